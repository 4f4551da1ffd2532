// pkg/core/clone.go
package core

import "maps"

// Clone returns a deep copy of the arrow.
func (a Arrow) Clone() Arrow {
	out := a
	if a.Points != nil {
		out.Points = append([]Point(nil), a.Points...)
	}
	if a.ToPoint != nil {
		p := *a.ToPoint
		out.ToPoint = &p
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := *f
	out.Tokens = maps.Clone(f.Tokens)
	if out.Tokens == nil {
		out.Tokens = map[string]Point{}
	}
	out.Arrows = append([]string{}, f.Arrows...)
	out.NextFrameIDs = append([]string{}, f.NextFrameIDs...)
	return &out
}

// Clone returns a deep copy of the play. Nothing in the copy aliases p.
func (p *Play) Clone() *Play {
	if p == nil {
		return nil
	}
	out := *p
	out.Tokens = append([]Token(nil), p.Tokens...)
	out.Frames = make([]*Frame, 0, len(p.Frames))
	for _, f := range p.Frames {
		if f == nil {
			continue
		}
		out.Frames = append(out.Frames, f.Clone())
	}
	out.ArrowsByID = make(map[string]Arrow, len(p.ArrowsByID))
	for id, a := range p.ArrowsByID {
		out.ArrowsByID[id] = a.Clone()
	}
	return &out
}
