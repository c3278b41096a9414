package responses

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestWriteSuccessWrapsData(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccess(resp, map[string]int{"count": 3})

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data["count"] != 3 {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}

func TestWriteErrorMapsStatusAndMessage(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "delivery day required"), http.StatusBadRequest},
		{"storage", pkgerrors.New(pkgerrors.CodeStorage, "insert failed"), http.StatusBadRequest},
		{"duplicate", pkgerrors.New(pkgerrors.CodeDuplicate, "box already exists"), http.StatusAccepted},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "todo not found"), http.StatusNotFound},
		{"internal", pkgerrors.New(pkgerrors.CodeInternal, "boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			WriteError(context.Background(), testLogger(), resp, tc.err)

			if resp.Code != tc.status {
				t.Fatalf("unexpected status %d", resp.Code)
			}
			var envelope struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if envelope.Error == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), resp, pkgerrors.New(pkgerrors.CodeInternal, "pool exhausted at 10.0.0.3"))

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Error != "internal server error" {
		t.Fatalf("internal details leaked: %q", envelope.Error)
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), resp, io.ErrUnexpectedEOF)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
