package language

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// ErrUnreliable is returned by a Primary detector when it cannot commit to a
// supported language.
var ErrUnreliable = errors.New("language detection unreliable")

// Primary is a general-purpose detector tried before the script heuristic.
type Primary interface {
	Detect(text string) (string, error)
}

// script pairs a language with its Unicode block and keyword tokens.
type script struct {
	code     string
	block    *unicode.RangeTable
	keywords []string
}

// scripts is ordered by detection priority: Kannada, then Hindi, then Odia.
var scripts = []script{
	{
		code:  Kannada,
		block: &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0C80, Hi: 0x0CFF, Stride: 1}}},
		keywords: []string{
			"ನಮ್ಮ", "ಮಾರಾಟ", "ಎಷ್ಟು", "ಹೇಗೆ", "ಯಾವುದು", "ಕನ್ನಡ", "ಬಿಲ್", "ಹಣ",
		},
	},
	{
		code:  Hindi,
		block: &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}},
		keywords: []string{
			"बिक्री", "कितनी", "कैसे", "क्या", "हमारी", "पैसे", "कमाई", "व्यापार",
		},
	},
	{
		code:  Odia,
		block: &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0B00, Hi: 0x0B7F, Stride: 1}}},
		keywords: []string{
			"ବିକ୍ରି", "କେତେ", "କିପରି", "କଣ", "ଆମର", "ଟଙ୍କା", "ବ୍ୟବସାୟ",
		},
	},
}

// Detector decides the language of a query. It never fails: when the primary
// detector is absent or gives up, a deterministic script/keyword heuristic runs.
type Detector struct {
	primary Primary
	logger  *slog.Logger
}

// NewDetector creates a detector. A nil primary means heuristic-only detection.
func NewDetector(primary Primary) *Detector {
	return &Detector{
		primary: primary,
		logger:  slog.Default().With("component", "language"),
	}
}

// Detect returns the canonical code for text, or "en" if nothing matches.
func (d *Detector) Detect(text string) string {
	if d.primary != nil {
		code, err := d.tryPrimary(text)
		if err == nil {
			d.logger.Debug("primary detection", "language", code)
			return code
		}
		d.logger.Debug("primary detection failed, using heuristic", "error", err)
	}
	return DetectHeuristic(text)
}

func (d *Detector) tryPrimary(text string) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("primary detector panicked: %v", r)
		}
	}()
	code, err = d.primary.Detect(text)
	if err != nil {
		return "", err
	}
	code = Normalize(code)
	if !IsSupported(code) {
		return "", fmt.Errorf("unsupported language %q: %w", code, ErrUnreliable)
	}
	return code, nil
}

// DetectHeuristic checks script ranges first, then keyword tokens, and
// defaults to English. Ties resolve in Kannada, Hindi, Odia order.
func DetectHeuristic(text string) string {
	for _, s := range scripts {
		if strings.IndexFunc(text, func(r rune) bool { return unicode.Is(s.block, r) }) >= 0 {
			return s.code
		}
	}

	for _, s := range scripts {
		for _, kw := range s.keywords {
			if strings.Contains(text, kw) {
				return s.code
			}
		}
	}
	return English
}

// Statistical wraps whatlanggo, restricted to the supported languages.
type Statistical struct {
	options whatlanggo.Options
}

var whatlangCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: English,
	whatlanggo.Hin: Hindi,
	whatlanggo.Kan: Kannada,
	whatlanggo.Ori: Odia,
}

// NewStatistical creates a whatlanggo-backed primary detector.
func NewStatistical() *Statistical {
	wl := make(map[whatlanggo.Lang]bool, len(whatlangCodes))
	for l := range whatlangCodes {
		wl[l] = true
	}
	return &Statistical{options: whatlanggo.Options{Whitelist: wl}}
}

// Detect returns the detected code or ErrUnreliable.
func (s *Statistical) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUnreliable
	}
	info := whatlanggo.DetectWithOptions(text, s.options)
	code, ok := whatlangCodes[info.Lang]
	if !ok || !info.IsReliable() {
		return "", ErrUnreliable
	}
	return code, nil
}
