package server

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/snipserve/snipserve/pkg/config"
	"github.com/snipserve/snipserve/pkg/detect"
	"github.com/snipserve/snipserve/pkg/snippet"
)

// Server handles the IPC for trigger detection. Requests come in over
// stdin, responses go out over stdout, both msgpack encoded. The detector
// is not safe for concurrent use, so request handling and watcher-driven
// reloads are both serialized through mu.
type Server struct {
	detector   *detect.Detector
	library    *snippet.Library
	appConfig  *config.Config
	configPath string

	mu      sync.Mutex // guards detector
	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
	writeMu sync.Mutex // guards encoder
}

// NewServer creates a new detection server using stdin/stdout for IPC.
func NewServer(detector *detect.Detector, library *snippet.Library, appConfig *config.Config, configPath string) *Server {
	s := &Server{
		detector:   detector,
		library:    library,
		appConfig:  appConfig,
		configPath: configPath,
	}
	s.SetIO(os.Stdin, os.Stdout)
	return s
}

// SetIO replaces the transport streams. Intended for tests and embedding.
func (s *Server) SetIO(r io.Reader, w io.Writer) {
	s.decoder = msgpack.NewDecoder(r)
	s.encoder = msgpack.NewEncoder(w)
}

// Start begins listening for IPC requests. It returns nil when the client
// closes its end of the pipe.
func (s *Server) Start() error {
	log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(StatusResponse{Status: "ready"})

	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Reading request stream: %v", err)
			return err
		}
		s.handleRequest(raw)
	}
}

// ReloadSnippets pushes the library's current snippet set into the
// detector. The snippet file watcher calls this after every reload.
func (s *Server) ReloadSnippets() {
	s.mu.Lock()
	s.detector.UpdateSnippets(s.library.Snippets())
	s.mu.Unlock()
}

// handleRequest routes a raw message by its cmd field.
func (s *Server) handleRequest(raw msgpack.RawMessage) {
	var env Envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		s.sendError("", "Invalid msgpack request", 400)
		log.Errorf("Unmarshaling request envelope: %v", err)
		return
	}

	switch env.Cmd {
	case "detect":
		s.handleDetect(raw, env.ID)
	case "snippets":
		s.handleSnippets(raw, env.ID)
	case "config":
		s.handleConfig(raw, env.ID)
	case "health":
		s.send(StatusResponse{ID: env.ID, Status: "ok"})
	default:
		s.sendError(env.ID, fmt.Sprintf("Unknown command: %s", env.Cmd), 400)
	}
}

// handleDetect processes a detection request. The text may be empty (the
// detector answers Idle); an absent cursor means end of text.
func (s *Server) handleDetect(raw msgpack.RawMessage, id string) {
	var req DetectRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.sendError(id, "Invalid detect request", 400)
		log.Errorf("Unmarshaling detect request: %v", err)
		return
	}

	cursor := -1
	if req.Cursor != nil {
		cursor = *req.Cursor
	}

	start := time.Now()
	s.mu.Lock()
	match := s.detector.ProcessInputAt(req.Text, cursor)
	s.mu.Unlock()
	elapsed := time.Since(start)

	s.send(DetectResponse{
		ID:          id,
		State:       match.State.String(),
		Match:       match.IsMatch,
		Trigger:     match.Trigger,
		Content:     match.Content,
		MatchEnd:    match.MatchEnd,
		Potential:   match.PotentialTrigger,
		Completions: match.PossibleCompletions,
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleSnippets processes a snippet library management request.
func (s *Server) handleSnippets(raw msgpack.RawMessage, id string) {
	var req SnippetRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.sendError(id, "Invalid snippets request", 400)
		log.Errorf("Unmarshaling snippets request: %v", err)
		return
	}

	switch req.Action {
	case "get_info":
		s.send(SnippetResponse{
			ID:      id,
			Status:  "ok",
			Count:   s.library.Count(),
			Skipped: s.library.SkippedCount(),
			File:    s.library.Path(),
		})
	case "reload":
		if err := s.library.Reload(); err != nil {
			s.send(SnippetResponse{ID: id, Status: "error", Error: err.Error()})
			log.Errorf("Reloading snippet library: %v", err)
			return
		}
		s.ReloadSnippets()
		s.send(SnippetResponse{ID: id, Status: "ok", Count: s.library.Count()})
	case "list":
		s.send(SnippetResponse{
			ID:       id,
			Status:   "ok",
			Triggers: s.library.TriggersWithPrefix(req.Prefix),
		})
	default:
		s.send(SnippetResponse{
			ID:     id,
			Status: "error",
			Error:  fmt.Sprintf("unknown action: %s", req.Action),
		})
	}
}

// handleConfig applies a partial detector configuration update and persists
// it to the active config file.
func (s *Server) handleConfig(raw msgpack.RawMessage, id string) {
	var req ConfigRequest
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.sendError(id, "Invalid config request", 400)
		log.Errorf("Unmarshaling config request: %v", err)
		return
	}

	opts := detect.Options{
		MaxTriggerLength: req.MaxTriggerLength,
		CaseSensitive:    req.CaseSensitive,
	}
	if req.Prefix != nil {
		runes := []rune(*req.Prefix)
		if len(runes) != 1 {
			s.send(ConfigResponse{ID: id, Status: "error", Error: "prefix must be a single character"})
			return
		}
		opts.Prefix = &runes[0]
	}

	s.mu.Lock()
	s.detector.UpdateOptions(opts)
	s.mu.Unlock()

	if s.appConfig != nil {
		if err := s.appConfig.Update(s.configPath, req.Prefix, req.MaxTriggerLength, req.CaseSensitive); err != nil {
			log.Warnf("Persisting config update: %v", err)
		}
	}
	s.send(ConfigResponse{ID: id, Status: "ok"})
}

// send marshals the given response and writes it to the client.
func (s *Server) send(response interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(RequestError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
