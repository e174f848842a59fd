package webhooklogs

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/gravadormedico/voicepen-backend/pkg/db/models"
	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// Entry is one inbound delivery as the handler saw it.
type Entry struct {
	Endpoint       string
	Payload        []byte
	ResponseStatus int
	Latency        time.Duration
	Err            string
	Success        bool
}

type store interface {
	Detect(ctx context.Context) Capabilities
	Insert(ctx context.Context, row *models.WebhookLog) error
	InsertPayloadOnly(ctx context.Context, payload datatypes.JSON) error
}

// Recorder appends audit rows. It never fails the caller: write errors are
// logged at warn and dropped.
type Recorder struct {
	store store
	logg  *logger.Logger
	caps  Capabilities
}

// NewRecorder probes the table once and fixes the write shape for the process.
func NewRecorder(ctx context.Context, s store, logg *logger.Logger) *Recorder {
	if logg == nil {
		logg = logger.Nop()
	}
	caps := s.Detect(ctx)
	if !caps.Full {
		logg.Warn(logg.WithField(ctx, "missing_columns", caps.Missing), "webhook log table is missing columns; writing payload only")
	}
	return &Recorder{store: s, logg: logg, caps: caps}
}

// Capabilities reports the probed table shape.
func (r *Recorder) Capabilities() Capabilities {
	return r.caps
}

// Record appends one row for the delivery.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil {
		return
	}
	payload := payloadJSON(entry.Payload)

	var err error
	if r.caps.Full {
		row := &models.WebhookLog{
			Endpoint:         entry.Endpoint,
			Payload:          payload,
			ResponseStatus:   entry.ResponseStatus,
			ProcessingTimeMS: entry.Latency.Milliseconds(),
			Success:          entry.Success,
		}
		if entry.Err != "" {
			msg := entry.Err
			row.Error = &msg
		}
		err = r.store.Insert(ctx, row)
	} else {
		err = r.store.InsertPayloadOnly(ctx, payload)
	}
	if err != nil {
		r.logg.WarnErr(ctx, "failed to record webhook log", err)
	}
}

// payloadJSON keeps bodies that are not JSON by wrapping them, so the jsonb
// column still accepts the row.
func payloadJSON(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return datatypes.JSON("{}")
	}
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(body)})
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(wrapped)
}
