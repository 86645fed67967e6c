package document

import "sort"

// normalizeRanges merges overlapping or touching ranges of the same style,
// drops empty ranges, and orders the result by (style, offset) so that two
// blocks with the same styling compare equal.
func normalizeRanges(in []StyleRange) []StyleRange {
	if len(in) == 0 {
		return nil
	}
	rs := make([]StyleRange, 0, len(in))
	for _, r := range in {
		if r.Length > 0 {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Style != rs[j].Style {
			return rs[i].Style < rs[j].Style
		}
		return rs[i].Offset < rs[j].Offset
	})

	out := make([]StyleRange, 0, len(rs))
	for _, r := range rs {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Style == r.Style && r.Offset <= last.End() {
				if r.End() > last.End() {
					last.Length = r.End() - last.Offset
				}
				continue
			}
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// replaceSpan adjusts ranges for the replacement of [start, end) by n code
// points. Ranges before the span are kept, ranges after it are shifted, and
// ranges overlapping it keep only their parts outside the span. The inserted
// text is left unstyled.
func replaceSpan(in []StyleRange, start, end, n int) []StyleRange {
	delta := n - (end - start)
	out := make([]StyleRange, 0, len(in)+1)
	for _, r := range in {
		a, b := r.Offset, r.End()
		if a < start {
			out = append(out, StyleRange{Offset: a, Length: min(b, start) - a, Style: r.Style})
		}
		if b > end {
			from := max(a, end)
			out = append(out, StyleRange{Offset: from + delta, Length: b - from, Style: r.Style})
		}
	}
	return normalizeRanges(out)
}

// removeStyle strips style from [start, end).
func removeStyle(in []StyleRange, style Style, start, end int) []StyleRange {
	out := make([]StyleRange, 0, len(in)+1)
	for _, r := range in {
		if r.Style != style || r.End() <= start || r.Offset >= end {
			out = append(out, r)
			continue
		}
		if r.Offset < start {
			out = append(out, StyleRange{Offset: r.Offset, Length: start - r.Offset, Style: style})
		}
		if r.End() > end {
			out = append(out, StyleRange{Offset: end, Length: r.End() - end, Style: style})
		}
	}
	return normalizeRanges(out)
}

// addStyle applies style to [start, end).
func addStyle(in []StyleRange, style Style, start, end int) []StyleRange {
	out := make([]StyleRange, 0, len(in)+1)
	out = append(out, in...)
	out = append(out, StyleRange{Offset: start, Length: end - start, Style: style})
	return normalizeRanges(out)
}

// covers reports whether every offset in [start, end) carries style.
// Ranges must already be normalised.
func covers(in []StyleRange, style Style, start, end int) bool {
	for _, r := range in {
		if r.Style == style && r.Offset <= start && r.End() >= end {
			return true
		}
	}
	return false
}

// splitRanges divides ranges at offset: the head keeps [0, offset), the
// tail gets the remainder rebased to 0.
func splitRanges(in []StyleRange, offset int) (head, tail []StyleRange) {
	for _, r := range in {
		if r.Offset < offset {
			head = append(head, StyleRange{Offset: r.Offset, Length: min(r.End(), offset) - r.Offset, Style: r.Style})
		}
		if r.End() > offset {
			from := max(r.Offset, offset)
			tail = append(tail, StyleRange{Offset: from - offset, Length: r.End() - from, Style: r.Style})
		}
	}
	return normalizeRanges(head), normalizeRanges(tail)
}

// joinRanges concatenates the ranges of two texts, shifting the second set
// by the length of the first.
func joinRanges(first []StyleRange, second []StyleRange, shift int) []StyleRange {
	out := make([]StyleRange, 0, len(first)+len(second))
	out = append(out, first...)
	for _, r := range second {
		r.Offset += shift
		out = append(out, r)
	}
	return normalizeRanges(out)
}
