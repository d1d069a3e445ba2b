package route

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"attend/src-server/checkin"
	"attend/src-server/metric"
	"attend/src-server/model"
	"attend/src-server/utils"
)

// Manual wires the dashboard check-in. Unlike the RFID path the event
// is named explicitly and the ledger never infers a checkout.
func Manual(muxer *http.ServeMux, as *utils.AppState) {
	type ManualReqBody struct {
		EventID int64 `json:"event_id"`
	}

	ledger := checkin.NewLedger(as.BunDB, as.Config.GetLocation())

	muxer.HandleFunc("POST /api/manual-checkin", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			sessionModel, ok := r.Context().Value(SessionCtxKey).(*model.Session)
			if !ok {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't get session from middleware"))
				return
			}

			var reqBody ManualReqBody
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Invalid request body"}`))
				return
			}
			if reqBody.EventID == 0 {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Event ID is required"}`))
				return
			}

			userModel := new(model.User)
			if err := as.BunDB.
				NewSelect().
				Model(userModel).
				Where("id = ?", sessionModel.UserID).
				Where("active = ?", true).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"User not found or inactive"}`))
				return
			}

			eventModel := new(model.Event)
			if err := as.BunDB.
				NewSelect().
				Model(eventModel).
				Where("id = ?", reqBody.EventID).
				Where("active = ?", true).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"Event not found or not available"}`))
				return
			}

			result, err := ledger.AdmitManual(r.Context(), checkin.Scan{
				Tag:       userModel.RfidTag,
				User:      userModel,
				Event:     eventModel,
				Method:    model.CHECKIN_METHOD_MANUAL,
				Timestamp: time.Now(),
				IPAddress: r.RemoteAddr,
			})
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Check-in failed"}`))
				slog.Error("can't admit manual check-in", "user", userModel.ID, "event", eventModel.ID, "error", err)
				return
			}

			if result.Outcome == checkin.RESULT_OUTCOME_CHECKED_IN {
				metric.CountScan(string(model.ACCESS_LOG_ACTION_MANUAL_CHECKIN), string(model.ACCESS_LOG_OUTCOME_SUCCESS))
			} else {
				metric.CountScan(string(model.ACCESS_LOG_ACTION_MANUAL_CHECKIN), string(model.ACCESS_LOG_OUTCOME_FAILED))
			}

			respBodyJson, err := json.Marshal(result)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Can't marshal response body"}`))
				return
			}

			if result.Outcome == checkin.RESULT_OUTCOME_REJECTED {
				w.WriteHeader(http.StatusConflict)
			} else {
				w.WriteHeader(http.StatusOK)
			}
			w.Write(respBodyJson)
		}))
}
