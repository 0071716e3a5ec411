package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/rs/zerolog/hlog"

	"github.com/yusufkecer/hospital-backend/internal/bmi"
	"github.com/yusufkecer/hospital-backend/internal/domain"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeFailure answers validation failures with 400 and duplicate keys with
// 409. Anything else is logged and reported as a 500 carrying fallback.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Msg)
		return
	}
	var berr *bmi.ValidationError
	if errors.As(err, &berr) {
		writeError(w, http.StatusBadRequest, berr.Message)
		return
	}
	if isDuplicate(err) {
		writeError(w, http.StatusConflict, "resource already exists")
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, fallback)
}

func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func decodeQuery(r *http.Request, dst interface{}) error {
	return queryDecoder.Decode(dst, r.URL.Query())
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var timeNow = time.Now
