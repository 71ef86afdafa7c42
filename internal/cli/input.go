// Package cli handles cmd line input and verdict display for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/internal/utils"
	"github.com/snipserve/snipserve/pkg/detect"
)

// InputHandler processes user input from stdin, running each line through
// the detector and printing the verdict. Useful for testing trigger sets
// before wiring up a real host.
type InputHandler struct {
	detector     detect.IDetector
	showContent  bool
	maxPreview   int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(detector detect.IDetector, showContent bool, maxPreview int) *InputHandler {
	return &InputHandler{
		detector:    detector,
		showContent: showContent,
		maxPreview:  maxPreview,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the line to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("SnipServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Printf("Loaded %d triggers. Type text and press Enter to see the verdict (Ctrl+C to exit):",
		h.detector.SnippetCount())

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput runs a single line through the detector and prints the
// classification, payload preview and timing.
func (h *InputHandler) handleInput(text string) {
	h.requestCount++

	start := time.Now()
	match := h.detector.ProcessInput(text)
	elapsed := time.Since(start)

	log.Debugf("Took [ %v ] for input '%s'", elapsed, text)

	switch match.State {
	case detect.StateComplete:
		clTrigger := fmt.Sprintf("\033[38;5;75m%s\033[0m", match.Trigger)
		log.Printf("complete: %s (match end %d)", clTrigger, match.MatchEnd)
		if h.showContent {
			log.Printf("  -> %s", utils.TruncateForDisplay(match.Content, h.maxPreview))
		}
	case detect.StateAmbiguous:
		log.Printf("ambiguous: '%s' could become:", match.PotentialTrigger)
		for i, completion := range match.PossibleCompletions {
			log.Printf("%2d. %s", i+1, completion)
		}
	case detect.StateTyping:
		log.Printf("typing: '%s'", match.PotentialTrigger)
	case detect.StateNoMatch:
		log.Warnf("no match in front of cursor")
	default:
		log.Print("idle")
	}
}
