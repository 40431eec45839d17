package lsp

import (
	"fortio.org/safecast"
	"go.lsp.dev/protocol"

	"ember/internal/diag"
	"ember/internal/source"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// SourcePosition converts an editor position for use with source.File.
func SourcePosition(pos protocol.Position) source.Position {
	return source.Position{Line: int(pos.Line), Character: int(pos.Character)}
}

// ProtocolPosition is the inverse of SourcePosition.
func ProtocolPosition(pos source.Position) protocol.Position {
	return protocol.Position{Line: safeUint32(pos.Line), Character: safeUint32(pos.Character)}
}

// RangeForSpan converts a byte span of file into an editor range.
func RangeForSpan(file *source.File, span diag.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: ProtocolPosition(file.Position(span.Start)),
		End:   ProtocolPosition(file.Position(span.End)),
	}
}

// spanFits reports whether span addresses bytes inside src.
func spanFits(span diag.Span, src string) bool {
	return span.Start <= span.End && span.End <= safeUint32(len(src))
}
