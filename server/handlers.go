package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/audit"
	"github.com/fieldcalc/fieldcalc/logsheet"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/gorilla/mux"
)

// maxImageSize limits each uploaded logsheet image
const maxImageSize = 16 << 20

// Calculator runs the field calculations on raw user input
type Calculator interface {
	ReactivePower(api.PowerInputs) (api.ReactivePowerResult, bool)
	Consumption(api.ConsumptionInputs) (api.ConsumptionResult, bool)
}

// Preferences holds the UI preferences
type Preferences interface {
	Theme() api.Theme
	SetTheme(string) error
}

// Logsheet submits logsheet images for analysis
type Logsheet interface {
	Submit(context.Context, logsheet.Image, logsheet.Image, func(logsheet.Result)) (logsheet.Ack, error)
	Online(context.Context) error
}

func jsonWrite(w http.ResponseWriter, content interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(content); err != nil {
		log.ERROR.Printf("response: %v", err)
	}
}

func jsonResult(w http.ResponseWriter, res interface{}) {
	jsonWrite(w, map[string]interface{}{"result": res})
}

func jsonError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	jsonWrite(w, map[string]interface{}{"error": err.Error()})
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// mvarHandler solves reactive power. Incomplete input renders an empty invalid result.
func mvarHandler(calc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.PowerInputs
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, _ := calc.ReactivePower(in)
		jsonResult(w, res)
	}
}

// consumptionHandler computes consumption. Insufficient readings render an empty invalid result.
func consumptionHandler(calc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.ConsumptionInputs
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		res, _ := calc.Consumption(in)
		jsonResult(w, res)
	}
}

func auditHandler(reader api.AuditReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			jsonError(w, http.StatusNotFound, audit.ErrNoReader)
			return
		}

		res, err := reader.Entries()
		if errors.Is(err, audit.ErrNoReader) {
			jsonError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		if res == nil {
			res = []api.AuditEntry{}
		}

		jsonResult(w, res)
	}
}

func themeHandler(prefs Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResult(w, prefs.Theme())
	}
}

func setThemeHandler(prefs Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := prefs.SetTheme(mux.Vars(r)["theme"]); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		jsonResult(w, prefs.Theme())
	}
}

func formImage(r *http.Request, field string) (logsheet.Image, error) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		return logsheet.Image{}, err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxImageSize))

	return logsheet.Image{Name: fh.Filename, Data: b}, err
}

// logsheetHandler acknowledges the upload immediately. The result is published to out when available.
func logsheetHandler(svc Logsheet, out chan<- util.Param) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			jsonError(w, http.StatusServiceUnavailable, errors.New("logsheet not configured"))
			return
		}

		if err := r.ParseMultipartForm(2 * maxImageSize); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		transformer, err := formImage(r, "file132")
		if err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		feeder, err := formImage(r, "file33")
		if err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ack, err := svc.Submit(r.Context(), transformer, feeder, func(res logsheet.Result) {
			if res.Err != nil {
				log.WARN.Printf("logsheet %s: %v", res.JobID, res.Err)
			}

			out <- util.Param{Key: "logsheet", Val: struct {
				logsheet.Result
				Error string `json:"error,omitempty"`
			}{res, res.Error()}}
		})
		if err != nil {
			jsonError(w, http.StatusBadGateway, err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		jsonResult(w, ack)
	}
}

func logsheetStatusHandler(svc Logsheet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		online := svc != nil && svc.Online(r.Context()) == nil
		jsonResult(w, map[string]bool{"online": online})
	}
}
