package route

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"attend/src-server/checkin"
	"attend/src-server/metric"
	"attend/src-server/model"
	"attend/src-server/utils"
)

// Scan wires the device-facing RFID endpoint: normalize -> de-dup ->
// tag registry -> active event resolver -> ledger. Every attempt,
// accepted or not, ends up in the access log.
func Scan(muxer *http.ServeMux, as *utils.AppState) {
	type ScanReqBody struct {
		Rfid     string `json:"rfid"`
		DeviceID int    `json:"device_id"`
	}

	registry := checkin.NewRegistry(as.BunDB)
	resolver := checkin.NewResolver(as.BunDB)
	ledger := checkin.NewLedger(as.BunDB, as.Config.GetLocation())
	dedup := checkin.NewDedup(as.DedupCache)
	sink := checkin.NewAuditSink(as.BunDB)

	muxer.HandleFunc("POST /api/rfid-checkin", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), as.Config.GetScanTimeout())
		defer cancel()

		var reqBody ScanReqBody
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid request body"}`))
			return
		}

		sourceIP := r.RemoteAddr
		now := time.Now()

		tag, err := checkin.NormalizeTag(reqBody.Rfid)
		if err != nil {
			sink.Record(ctx, &model.AccessLog{
				Tag:       reqBody.Rfid,
				Action:    model.ACCESS_LOG_ACTION_FAILED_LOGIN,
				Outcome:   model.ACCESS_LOG_OUTCOME_FAILED,
				Detail:    checkin.DetailJSON(map[string]any{"error": "invalid tag format"}),
				DeviceID:  reqBody.DeviceID,
				IPAddress: sourceIP,
				Timestamp: now.UTC(),
			})
			metric.CountScan(string(model.ACCESS_LOG_ACTION_FAILED_LOGIN), string(model.ACCESS_LOG_OUTCOME_FAILED))
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid RFID format"}`))
			return
		}

		// at-least-once hardware delivery; a repeat inside the window
		// is the same physical scan
		if dedup.Seen(tag, now) {
			sink.Record(ctx, &model.AccessLog{
				Tag:       tag,
				Action:    model.ACCESS_LOG_ACTION_DUPLICATE_SCAN,
				Outcome:   model.ACCESS_LOG_OUTCOME_BLOCKED,
				Detail:    checkin.DetailJSON(map[string]any{"reason": "duplicate delivery"}),
				DeviceID:  reqBody.DeviceID,
				IPAddress: sourceIP,
				Timestamp: now.UTC(),
			})
			metric.CountScan(string(model.ACCESS_LOG_ACTION_DUPLICATE_SCAN), string(model.ACCESS_LOG_OUTCOME_BLOCKED))
			respBodyJson, _ := json.Marshal(checkin.Result{
				Outcome:   checkin.RESULT_OUTCOME_REJECTED,
				Reason:    checkin.REJECT_REASON_DUPLICATE_SCAN,
				Timestamp: now.UTC(),
			})
			w.WriteHeader(http.StatusOK)
			w.Write(respBodyJson)
			return
		}

		userModel, err := registry.Resolve(ctx, tag)
		switch {
		case errors.Is(err, checkin.ErrTagNotFound):
			sink.Record(ctx, &model.AccessLog{
				Tag:       tag,
				Action:    model.ACCESS_LOG_ACTION_FAILED_LOGIN,
				Outcome:   model.ACCESS_LOG_OUTCOME_FAILED,
				Detail:    checkin.DetailJSON(map[string]any{"error": "RFID not recognized"}),
				DeviceID:  reqBody.DeviceID,
				IPAddress: sourceIP,
				Timestamp: now.UTC(),
			})
			metric.CountScan(string(model.ACCESS_LOG_ACTION_FAILED_LOGIN), string(model.ACCESS_LOG_OUTCOME_FAILED))
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"RFID not recognized"}`))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Can't resolve tag"}`))
			slog.Error("can't resolve tag", "tag", tag, "error", err)
			return
		}

		eventModel, err := resolver.CurrentEvent(ctx, now, "")
		switch {
		case errors.Is(err, checkin.ErrNoActiveEvent):
			sink.Record(ctx, &model.AccessLog{
				Tag:       tag,
				UserID:    &userModel.ID,
				Action:    model.ACCESS_LOG_ACTION_FAILED_LOGIN,
				Outcome:   model.ACCESS_LOG_OUTCOME_FAILED,
				Detail:    checkin.DetailJSON(map[string]any{"error": "no active event"}),
				DeviceID:  reqBody.DeviceID,
				IPAddress: sourceIP,
				Timestamp: now.UTC(),
			})
			metric.CountScan(string(model.ACCESS_LOG_ACTION_FAILED_LOGIN), string(model.ACCESS_LOG_OUTCOME_FAILED))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"warning":"No active event found for check-in"}`))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Can't resolve event"}`))
			slog.Error("can't resolve event", "error", err)
			return
		}

		writeTimer := time.Now()
		result, err := ledger.AdmitScan(ctx, checkin.Scan{
			Tag:       tag,
			User:      userModel,
			Event:     eventModel,
			Method:    model.CHECKIN_METHOD_RFID,
			Timestamp: now,
			DeviceID:  reqBody.DeviceID,
			IPAddress: sourceIP,
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Check-in failed"}`))
			slog.Error("can't admit scan", "tag", tag, "error", err)
			return
		}
		as.MetricChans.DatabaseWrite <- float64(time.Since(writeTimer).Microseconds())

		switch result.Outcome {
		case checkin.RESULT_OUTCOME_CHECKED_IN:
			metric.CountScan(string(model.ACCESS_LOG_ACTION_CHECKIN), string(model.ACCESS_LOG_OUTCOME_SUCCESS))
		case checkin.RESULT_OUTCOME_CHECKED_OUT:
			metric.CountScan(string(model.ACCESS_LOG_ACTION_CHECKOUT), string(model.ACCESS_LOG_OUTCOME_SUCCESS))
		default:
			metric.CountScan(string(model.ACCESS_LOG_ACTION_CHECKIN), string(model.ACCESS_LOG_OUTCOME_FAILED))
		}

		respBodyJson, err := json.Marshal(result)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Can't marshal response body"}`))
			return
		}

		as.MetricChans.ScanPipeline <- float64(time.Since(startTimer).Microseconds())

		if result.Outcome == checkin.RESULT_OUTCOME_REJECTED {
			w.WriteHeader(http.StatusConflict)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		w.Write(respBodyJson)
	})
}
