package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssemble_WindowIsNotRefilled(t *testing.T) {
	prober := newFakeProber()
	rows := photoRows(3)
	rows[0].Width = 0
	prober.boundsErr[rows[0].Path] = errCorrupt

	conn := NewAssembler(NewExtractor(prober, nil, nil)).Assemble(rows, 2, NewIncludeSet(IncludeImageSize), 10)

	// the sentinel row fills the gap, page info still follows the raw count
	assert.Equal(t, []string{"2", "3"}, edgeIDs(&conn))
	assert.Equal(t, PageInfo{HasNextPage: true, EndCursor: "12"}, conn.PageInfo)
}

func TestAssemble_AllRowsFail(t *testing.T) {
	prober := newFakeProber()
	rows := photoRows(2)
	for i := range rows {
		prober.missing[rows[i].Path] = true
	}

	conn, stats := NewAssembler(NewExtractor(prober, nil, nil)).assemble(rows, 2, NewIncludeSet(IncludeLocation), 0)
	assert.Empty(t, conn.Edges)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.Equal(t, ScanStats{Fetched: 2, Scanned: 2, Skipped: 2}, stats)
}

func TestAssemble_StopsScanningAtFirst(t *testing.T) {
	prober := newFakeProber()
	_, stats := NewAssembler(NewExtractor(prober, nil, nil)).assemble(photoRows(3), 2, nil, 0)
	assert.Equal(t, ScanStats{Fetched: 3, Scanned: 2}, stats)
}
