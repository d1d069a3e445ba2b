package route

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"attend/src-server/model"
	"attend/src-server/utils"
)

// hardware readers deliver hex tag values
var hexTagPattern = regexp.MustCompile(`^[A-Fa-f0-9]{6,20}$`)

// Queue wires the hardware bridge: readers push raw scans in, the
// dashboard long-polls them back out. Nothing here touches the ledger;
// the bridge is just an at-least-once delivery buffer.
func Queue(muxer *http.ServeMux, as *utils.AppState) {
	type PushReqBody struct {
		Rfid     string `json:"rfid"`
		DeviceID int    `json:"device_id"`
		Source   string `json:"source"`
	}

	muxer.HandleFunc("POST /api/rfid-queue", func(w http.ResponseWriter, r *http.Request) {
		var reqBody PushReqBody
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid request body"}`))
			return
		}

		tag := strings.TrimSpace(reqBody.Rfid)
		if !hexTagPattern.MatchString(tag) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid RFID format"}`))
			return
		}
		tag = strings.ToUpper(tag)

		source := reqBody.Source
		if source == "" {
			source = "hardware"
		}

		// same tag already queued inside the dedup window: acknowledge
		// but don't queue again
		count, err := as.BunDB.NewSelect().
			Model((*model.ScanQueue)(nil)).
			Where("tag = ?", tag).
			Where("created_at >= ?", time.Now().UTC().Add(-as.Config.GetDedupWindow())).
			Count(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Can't check queue"}`))
			slog.Error("can't check scan queue for duplicates", "tag", tag, "error", err)
			return
		}
		if count > 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"success":true,"duplicate":true}`))
			return
		}

		if _, err := as.BunDB.NewInsert().
			Model(&model.ScanQueue{
				Tag:       tag,
				DeviceID:  reqBody.DeviceID,
				SourceIP:  r.RemoteAddr,
				Source:    source,
				CreatedAt: time.Now().UTC(),
			}).
			Exec(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Can't queue scan"}`))
			slog.Error("can't queue scan", "tag", tag, "error", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	})

	type PollReqBody struct {
		LastTag   string `json:"last_tag"`
		TimeoutMs int    `json:"timeout"`
	}

	type PollRespBody struct {
		Success   bool   `json:"success"`
		RfidTag   string `json:"rfid_tag,omitempty"`
		Timestamp string `json:"timestamp,omitempty"`
		Source    string `json:"source,omitempty"`
		Message   string `json:"message,omitempty"`
	}

	// bounded long-poll for the newest queued scan
	muxer.HandleFunc("POST /api/rfid-poll", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			var reqBody PollReqBody
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Invalid request body"}`))
				return
			}

			timeout := time.Duration(min(max(reqBody.TimeoutMs, 100), 5000)) * time.Millisecond
			deadline := time.Now().Add(timeout)

			for {
				queueModel := new(model.ScanQueue)
				err := as.BunDB.NewSelect().
					Model(queueModel).
					Where("created_at >= ?", time.Now().UTC().Add(-as.Config.GetQueueRetention())).
					Where("tag != ?", reqBody.LastTag).
					Order("created_at DESC").
					Limit(1).
					Scan(r.Context())
				switch {
				case err != nil && !errors.Is(err, sql.ErrNoRows):
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"Can't read queue"}`))
					slog.Error("can't read scan queue", "error", err)
					return
				case err == nil:
					if _, err := as.BunDB.NewDelete().
						Model((*model.ScanQueue)(nil)).
						Where("id = ?", queueModel.ID).
						Exec(r.Context()); err != nil {
						slog.Warn("can't delete claimed scan from queue", "id", queueModel.ID, "error", err)
					}

					respBodyJson, _ := json.Marshal(PollRespBody{
						Success:   true,
						RfidTag:   queueModel.Tag,
						Timestamp: queueModel.CreatedAt.Format(time.RFC3339),
						Source:    queueModel.Source,
					})
					w.WriteHeader(http.StatusOK)
					w.Write(respBodyJson)
					return
				}

				if time.Now().After(deadline) {
					respBodyJson, _ := json.Marshal(PollRespBody{
						Success: false,
						Message: "No new scans detected",
					})
					w.WriteHeader(http.StatusOK)
					w.Write(respBodyJson)
					return
				}
				time.Sleep(200 * time.Millisecond)
			}
		}))
}
