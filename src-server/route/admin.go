package route

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"attend/src-server/model"
	"attend/src-server/utils"

	"github.com/uptrace/bun"
)

// Admin wires the participant-count repair. The cached counter on each
// event is fast-read state only; checked-in rows are the source of
// truth and this rebuilds the cache from them.
func Admin(muxer *http.ServeMux, as *utils.AppState) {
	type OneCorrectionRespBody struct {
		EventID int64  `json:"event_id"`
		Name    string `json:"name"`
		Was     int    `json:"was"`
		Now     int    `json:"now"`
	}

	muxer.HandleFunc("POST /api/reconcile-participants", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			corrections := make([]OneCorrectionRespBody, 0)
			if err := as.BunDB.RunInTx(r.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
				eventModels := make([]model.Event, 0)
				if err := tx.NewSelect().
					Model(&eventModels).
					Where("active = ?", true).
					Scan(ctx); err != nil {
					return err
				}

				for _, eventModel := range eventModels {
					count, err := tx.NewSelect().
						Model((*model.CheckIn)(nil)).
						Where("event_id = ?", eventModel.ID).
						Where("status = ?", model.CHECKIN_STATUS_CHECKED_IN).
						Count(ctx)
					if err != nil {
						return err
					}
					if count == eventModel.CurrentParticipants {
						continue
					}

					if _, err := tx.NewUpdate().
						Model((*model.Event)(nil)).
						Set("current_participants = ?", count).
						Where("id = ?", eventModel.ID).
						Exec(ctx); err != nil {
						return err
					}
					corrections = append(corrections, OneCorrectionRespBody{
						EventID: eventModel.ID,
						Name:    eventModel.Name,
						Was:     eventModel.CurrentParticipants,
						Now:     count,
					})
				}
				return nil
			}); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Can't reconcile participants"}`))
				slog.Error("can't reconcile participants", "error", err)
				return
			}

			respBodyJson, err := json.Marshal(corrections)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Can't marshal response body"}`))
				return
			}

			w.WriteHeader(http.StatusOK)
			w.Write(respBodyJson)
		}))
}
