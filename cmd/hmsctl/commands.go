package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yusufkecer/hospital-backend/internal/apiclient"
	"github.com/yusufkecer/hospital-backend/internal/domain"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			env := apiclient.NewAuthService(a.client).Login(ctx, email, password)
			if err := env.Err(); err != nil {
				return err
			}
			if acct := env.Data.Account; acct != nil {
				fmt.Fprintf(a.out, "signed in as %s (%s)\n", acct.Email, acct.Role)
				return nil
			}
			fmt.Fprintln(a.out, "signed in")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAuthService(a.client).Register(ctx, name, email, password))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return apiclient.NewAuthService(a.client).Logout()
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAuthService(a.client).Me(ctx))
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the role dashboard of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAuthService(a.client).Dashboard(ctx))
		},
	}
}

func (a *app) bmiCmd() *cobra.Command {
	var patientID int64
	cmd := &cobra.Command{
		Use:   "bmi HEIGHT_CM WEIGHT_KG",
		Short: "Calculate a BMI, optionally recording it on a patient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid height %q", args[0])
			}
			weight, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid weight %q", args[1])
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			patients := apiclient.NewPatientService(a.client)
			if patientID > 0 {
				return render(a, patients.RecordBMI(ctx, patientID, height, weight))
			}
			return render(a, patients.CalculateBMI(ctx, height, weight))
		},
	}
	cmd.Flags().Int64Var(&patientID, "patient", 0, "patient id to record the result on")
	return cmd
}

func (a *app) patientsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "patients", Short: "Patient records"}

	var filter domain.PatientFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewPatientService(a.client).List(ctx, filter))
		},
	}
	list.Flags().StringVar(&filter.Search, "search", "", "match on name, e-mail or phone")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "page size")
	list.Flags().IntVar(&filter.Offset, "offset", 0, "page offset")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewPatientService(a.client).Get(ctx, id))
		},
	}

	me := &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in patient's record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewPatientService(a.client).Me(ctx))
		},
	}

	cmd.AddCommand(list, get, me)
	return cmd
}

func (a *app) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "appointments", Short: "Appointments"}

	var filter domain.AppointmentFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAppointmentService(a.client).List(ctx, filter))
		},
	}
	list.Flags().Int64Var(&filter.PatientID, "patient", 0, "patient id")
	list.Flags().Int64Var(&filter.DoctorID, "doctor", 0, "doctor account id")
	list.Flags().StringVar(&filter.Status, "status", "", "appointment status")
	list.Flags().StringVar(&filter.Date, "date", "", "day, YYYY-MM-DD")
	list.Flags().BoolVar(&filter.Upcoming, "upcoming", false, "only future appointments")

	var (
		appt   domain.Appointment
		at     string
		reason string
	)
	book := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return errors.New("--at must be RFC 3339, e.g. 2026-05-04T09:30:00Z")
			}
			appt.ScheduledAt = scheduled
			if reason != "" {
				appt.Reason = &reason
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAppointmentService(a.client).Create(ctx, &appt))
		},
	}
	book.Flags().Int64Var(&appt.PatientID, "patient", 0, "patient id (ignored for patients)")
	book.Flags().Int64Var(&appt.DoctorID, "doctor", 0, "doctor account id")
	book.Flags().StringVar(&appt.Department, "department", "", "department")
	book.Flags().StringVar(&reason, "reason", "", "reason for the visit")
	book.Flags().StringVar(&at, "at", "", "start time, RFC 3339")
	book.MarkFlagRequired("doctor")
	book.MarkFlagRequired("department")
	book.MarkFlagRequired("at")

	cancelCmd := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewAppointmentService(a.client).UpdateStatus(ctx, id, domain.AppointmentCancelled))
		},
	}

	cmd.AddCommand(list, book, cancelCmd)
	return cmd
}

func (a *app) queueCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "queue", Short: "Department queues"}

	var filter domain.QueueFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Show a department queue with estimated waits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewQueueService(a.client).List(ctx, filter))
		},
	}
	list.Flags().StringVar(&filter.Department, "department", "", "department")
	list.Flags().StringVar(&filter.Status, "status", "", "entry status")
	list.Flags().StringVar(&filter.Date, "date", "", "day, YYYY-MM-DD (default today)")

	var (
		patientID  int64
		department string
	)
	join := &cobra.Command{
		Use:   "join",
		Short: "Take a queue number",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewQueueService(a.client).Join(ctx, patientID, department))
		},
	}
	join.Flags().Int64Var(&patientID, "patient", 0, "patient id (ignored for patients)")
	join.Flags().StringVar(&department, "department", "", "department")
	join.MarkFlagRequired("department")

	cmd.AddCommand(list, join)
	return cmd
}

func (a *app) messagesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "messages", Short: "Direct messages"}

	var (
		with  int64
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the inbox, or one conversation with --with",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			messages := apiclient.NewMessageService(a.client)
			if with > 0 {
				return render(a, messages.Conversation(ctx, with, limit))
			}
			return render(a, messages.Inbox(ctx, limit))
		},
	}
	list.Flags().Int64Var(&with, "with", 0, "other account id")
	list.Flags().IntVar(&limit, "limit", 0, "page size")

	send := &cobra.Command{
		Use:   "send ACCOUNT_ID TEXT",
		Short: "Send a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			return render(a, apiclient.NewMessageService(a.client).Send(ctx, to, args[1]))
		},
	}

	cmd.AddCommand(list, send)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
