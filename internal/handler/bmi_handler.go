package handler

import (
	"net/http"

	"github.com/yusufkecer/hospital-backend/internal/bmi"
	"github.com/yusufkecer/hospital-backend/internal/domain"
)

// CalculateBMI is the stateless calculator. POST takes numeric JSON; GET
// takes the raw form strings as query parameters.
func CalculateBMI(w http.ResponseWriter, r *http.Request) {
	var (
		result bmi.Result
		err    error
	)

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		result, err = bmi.Parse(q.Get("height"), q.Get("weight"))
	} else {
		var req domain.BMIRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		height, weight, merr := req.Measurements()
		if merr != nil {
			writeFailure(w, r, merr, "failed to calculate bmi")
			return
		}
		result, err = bmi.Calculate(height, weight)
	}
	if err != nil {
		writeFailure(w, r, err, "failed to calculate bmi")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
