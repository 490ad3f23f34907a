package trace

// spanStack is the explicit LIFO of in-flight spans; the top entry is
// the current parent for new child spans.
//
// Precondition: callers end spans in strict LIFO nesting order. The
// stack does not defend against out-of-order ends beyond popping
// whatever is on top.
type spanStack struct {
	spans []*Span
}

func (s *spanStack) push(span *Span) {
	s.spans = append(s.spans, span)
}

func (s *spanStack) pop() *Span {
	if len(s.spans) == 0 {
		return nil
	}
	top := s.spans[len(s.spans)-1]
	s.spans = s.spans[:len(s.spans)-1]
	return top
}

func (s *spanStack) top() *Span {
	if len(s.spans) == 0 {
		return nil
	}
	return s.spans[len(s.spans)-1]
}

func (s *spanStack) depth() int {
	return len(s.spans)
}

func (s *spanStack) reset() {
	s.spans = s.spans[:0]
}
