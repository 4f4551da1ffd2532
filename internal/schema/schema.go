// Package schema decodes and validates serialized Play documents.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// ErrInvalidPlay wraps every validation failure.
var ErrInvalidPlay = errors.New("invalid play document")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Parse decodes raw JSON into a Play, applies document defaults and validates it.
// The returned play has not been normalized.
func Parse(raw []byte) (*core.Play, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidPlay)
	}

	var p core.Play
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlay, err)
	}
	ApplyDefaults(&p)

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyDefaults fills optional fields that older documents omit.
func ApplyDefaults(p *core.Play) {
	if p.CourtType == "" {
		p.CourtType = core.CourtHalf
	}
	if p.ArrowsByID == nil {
		p.ArrowsByID = make(map[string]core.Arrow)
	}
	for _, f := range p.Frames {
		if f == nil {
			continue
		}
		if f.Tokens == nil {
			f.Tokens = make(map[string]core.Point)
		}
		if f.Arrows == nil {
			f.Arrows = []string{}
		}
		if f.NextFrameIDs == nil {
			f.NextFrameIDs = []string{}
		}
	}
}

// Validate checks struct constraints and cross references that the
// frame graph cannot repair: duplicate ids and arrow map keys that
// disagree with the arrow's own id.
func Validate(p *core.Play) error {
	if p == nil {
		return fmt.Errorf("%w: nil play", ErrInvalidPlay)
	}
	if err := instance().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidPlay, describe(verrs))
		}
		return fmt.Errorf("%w: %w", ErrInvalidPlay, err)
	}

	seen := make(map[string]struct{}, len(p.Frames))
	for _, f := range p.Frames {
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate frame id %q", ErrInvalidPlay, f.ID)
		}
		seen[f.ID] = struct{}{}
	}

	tokens := make(map[string]struct{}, len(p.Tokens))
	for _, t := range p.Tokens {
		if _, dup := tokens[t.ID]; dup {
			return fmt.Errorf("%w: duplicate token id %q", ErrInvalidPlay, t.ID)
		}
		tokens[t.ID] = struct{}{}
	}

	for key, a := range p.ArrowsByID {
		if key != a.ID {
			return fmt.Errorf("%w: arrow key %q does not match id %q", ErrInvalidPlay, key, a.ID)
		}
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
