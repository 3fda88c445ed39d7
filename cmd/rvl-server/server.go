package main

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cmdrvl/rvl/internal/orchestrator"
	"github.com/cmdrvl/rvl/internal/output"
	"github.com/cmdrvl/rvl/internal/refusal"
)

// maxCompareBody caps the multipart request body accepted by /compare.
const maxCompareBody = 50 * 1024 * 1024

// config is the server's environment-derived configuration, read once at
// startup exactly as the original binary reads RVL_PORT/RVL_HOST/
// RVL_API_TOKEN.
type config struct {
	host     string
	port     string
	apiToken string
}

func configFromEnv() config {
	host, ok := os.LookupEnv("RVL_HOST")
	if !ok || host == "" {
		host = "0.0.0.0"
	}
	port, ok := os.LookupEnv("RVL_PORT")
	if !ok || port == "" {
		port = "8080"
	}
	token := os.Getenv("RVL_API_TOKEN")
	return config{host: host, port: port, apiToken: token}
}

func newMux(cfg config, logger *logrus.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", withLogging(logger, http.HandlerFunc(healthHandler)))
	mux.Handle("/compare", withLogging(logger, withBearerAuth(cfg.apiToken, http.HandlerFunc(compareHandler))))
	return mux
}

func withLogging(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withBearerAuth(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		provided := strings.TrimPrefix(strings.TrimPrefix(header, "Bearer "), "bearer ")
		if provided == "" || provided == header || provided != token {
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// compareHandler accepts a multipart form with "old"/"new" file fields and
// optional "key"/"threshold"/"tolerance"/"delimiter" text fields, stages
// each file to a temp path, runs the pipeline, and always renders JSON.
func compareHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCompareBody)
	if err := r.ParseMultipartForm(maxCompareBody); err != nil {
		writeJSONError(w, http.StatusBadRequest, "request body too large or malformed: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	oldPath, cleanupOld, err := stageUpload(r, "old")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanupOld()

	newPath, cleanupNew, err := stageUpload(r, "new")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanupNew()

	args := orchestrator.Args{
		OldPath:   oldPath,
		NewPath:   newPath,
		Threshold: 0.95,
		Tolerance: 1e-9,
	}
	if key := r.FormValue("key"); key != "" {
		args.KeyColumn = []byte(key)
	}
	if raw := r.FormValue("threshold"); raw != "" {
		if v, perr := strconv.ParseFloat(raw, 64); perr == nil && v > 0 && v <= 1 {
			args.Threshold = v
		}
	}
	if raw := r.FormValue("tolerance"); raw != "" {
		if v, perr := strconv.ParseFloat(raw, 64); perr == nil && v >= 0 {
			args.Tolerance = v
		}
	}
	if raw := r.FormValue("delimiter"); raw != "" {
		if d, ok := decodeServerDelimiter(raw); ok {
			args.Delimiter = &d
		}
	}

	result, err := orchestrator.Run(args)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "comparison failed: "+err.Error())
		return
	}

	status := http.StatusOK
	if result.Outcome == output.Refusal {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = output.WriteJSON(w, result)
}

func stageUpload(r *http.Request, field string) (path string, cleanup func(), err error) {
	file, _, ferr := r.FormFile(field)
	if ferr != nil {
		return "", func() {}, errMissingField(field)
	}
	defer file.Close()

	temp, terr := os.CreateTemp("", "rvl-"+field+"-*.csv")
	if terr != nil {
		return "", func() {}, terr
	}
	if _, werr := io.Copy(temp, file); werr != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", func() {}, werr
	}
	if cerr := temp.Close(); cerr != nil {
		os.Remove(temp.Name())
		return "", func() {}, cerr
	}
	return temp.Name(), func() { os.Remove(temp.Name()) }, nil
}

func errMissingField(field string) error {
	return &missingFieldError{field: field}
}

type missingFieldError struct{ field string }

func (e *missingFieldError) Error() string {
	return "missing required field: '" + e.field + "' (CSV file)"
}

func decodeServerDelimiter(raw string) (byte, bool) {
	switch strings.ToLower(raw) {
	case "comma", ",":
		return ',', true
	case "tab", "\t":
		return '\t', true
	case "semicolon", ";":
		return ';', true
	case "pipe", "|":
		return '|', true
	case "caret", "^":
		return '^', true
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		n, perr := strconv.ParseUint(raw[2:], 16, 8)
		if perr != nil {
			return 0, false
		}
		return byte(n), true
	}
	if len(raw) == 1 {
		return raw[0], true
	}
	return 0, false
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	detail := refusal.Detail{
		Code: refusal.Io,
		Kind: refusal.Kind{IoError: message},
	}
	result := output.Result{Outcome: output.Refusal, RefusalDetail: &detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = output.WriteJSON(w, result)
}
