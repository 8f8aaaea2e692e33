package media

// ScanStats counts what the assembler did with one fetched window.
type ScanStats struct {
	Fetched int
	Scanned int
	Skipped int
}

// Assembler turns a fetched window into a Connection.
type Assembler struct {
	extractor *Extractor
}

func NewAssembler(extractor *Extractor) *Assembler {
	return &Assembler{extractor: extractor}
}

// Assemble scans rows in order, keeping the first `first` records that
// extract cleanly. Records that fail are dropped and do not count toward
// first, so a page can hold fewer than first edges when failures fall near
// the end of the window. Page info always follows the raw row count.
func (a *Assembler) Assemble(rows []RawAssetRecord, first int, include IncludeSet, offset int) Connection {
	conn, _ := a.assemble(rows, first, include, offset)
	return conn
}

func (a *Assembler) assemble(rows []RawAssetRecord, first int, include IncludeSet, offset int) (Connection, ScanStats) {
	stats := ScanStats{Fetched: len(rows)}
	edges := make([]Edge, 0, min(first, len(rows)))

	for _, rec := range rows {
		if len(edges) >= first {
			break
		}
		stats.Scanned++
		node, err := a.extractor.Extract(rec, include)
		if err != nil {
			stats.Skipped++
			continue
		}
		edges = append(edges, Edge{Node: node})
	}

	return Connection{
		Edges:    edges,
		PageInfo: PageInfoFor(len(rows), offset, first),
	}, stats
}
