package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"mediaroll/internal/media"
)

const (
	pathPageSize    = 1000
	maxAlbumFacets  = 10000
	dateTakenSetKey = "date_taken_set"
)

// BleveStore keeps the asset index as a Bleve document index. Documents are
// keyed by path so re-inserting a file replaces its entry. Asset ids are
// numeric like the SQLite rowids, so records move between backends as is.
type BleveStore struct {
	index bleve.Index

	mu     sync.Mutex
	lastID int64
}

// assetDoc is the indexed form of a RawAssetRecord. Bleve has no null, so
// nullable columns carry a companion *_set flag.
type assetDoc struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	MediaType      int    `json:"media_type"`
	MimeType       string `json:"mime_type"`
	Bucket         string `json:"bucket"`
	DateTaken      int64  `json:"date_taken"`
	DateTakenSet   bool   `json:"date_taken_set"`
	DateAdded      int64  `json:"date_added"`
	DateModified   int64  `json:"date_modified"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Size           int64  `json:"size"`
	Path           string `json:"path"`
	Orientation    int    `json:"orientation"`
	OrientationSet bool   `json:"orientation_set"`
}

var bleveFields = map[media.Column]struct {
	name    string
	numeric bool
	setFlag string
}{
	media.ColumnMediaType:    {name: "media_type", numeric: true},
	media.ColumnMimeType:     {name: "mime_type"},
	media.ColumnBucket:       {name: "bucket"},
	media.ColumnDateTaken:    {name: "date_taken", numeric: true, setFlag: dateTakenSetKey},
	media.ColumnDateAdded:    {name: "date_added", numeric: true},
	media.ColumnDateModified: {name: "date_modified", numeric: true},
	media.ColumnPath:         {name: "path"},
}

func assetMapping() mapping.IndexMapping {
	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	number := bleve.NewNumericFieldMapping()
	flag := bleve.NewBooleanFieldMapping()

	doc := bleve.NewDocumentStaticMapping()
	for _, f := range []string{"id", "mime_type", "bucket", "path"} {
		doc.AddFieldMappingsAt(f, exact)
	}
	for _, f := range []string{"seq", "media_type", "date_taken", "date_added", "date_modified", "width", "height", "size", "orientation"} {
		doc.AddFieldMappingsAt(f, number)
	}
	doc.AddFieldMappingsAt(dateTakenSetKey, flag)
	doc.AddFieldMappingsAt("orientation_set", flag)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Initialize opens the index at path, creating it when missing. An empty
// path keeps the index in memory.
func (b *BleveStore) Initialize(path string) error {
	if path == "" {
		index, err := bleve.NewMemOnly(assetMapping())
		if err != nil {
			return err
		}
		b.index = index
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		index, err := bleve.New(path, assetMapping())
		if err != nil {
			return translateBleveError(err)
		}
		b.index = index
	} else {
		index, err := bleve.Open(path)
		if err != nil {
			return translateBleveError(err)
		}
		b.index = index
	}
	return b.loadLastID()
}

// loadLastID reads the highest id in the index so new ids continue after it.
func (b *BleveStore) loadLastID() error {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 1, 0, false)
	req.Fields = []string{"seq"}
	req.SortBy([]string{"-seq"})

	res, err := b.index.Search(req)
	if err != nil {
		return translateBleveError(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID = 0
	if len(res.Hits) > 0 {
		if v, ok := res.Hits[0].Fields["seq"].(float64); ok {
			b.lastID = int64(v)
		}
	}
	return nil
}

func (b *BleveStore) nextID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	return strconv.FormatInt(b.lastID, 10)
}

// reserveID accepts an id supplied by the caller and keeps later allocations above it.
func (b *BleveStore) reserveID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("asset id %q is not a positive integer", id)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.lastID {
		b.lastID = n
	}
	return n, nil
}

func (b *BleveStore) Close() error {
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

func (b *BleveStore) Clear(ctx context.Context) error {
	paths, err := b.GetAllPaths(ctx)
	if err != nil {
		return err
	}
	batch := b.index.NewBatch()
	for _, p := range paths {
		batch.Delete(p)
	}
	return translateBleveError(b.index.Batch(batch))
}

func (b *BleveStore) Query(ctx context.Context, where media.Predicate, order media.Ordering, offset, limit int) ([]media.RawAssetRecord, error) {
	q, err := compileBleve(where)
	if err != nil {
		return nil, err
	}
	sortBy, err := bleveSort(order)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.Fields = []string{"*"}
	req.SortBy(sortBy)

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, translateBleveError(err)
	}

	results := make([]media.RawAssetRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		getStr := func(f string) string {
			if v, ok := hit.Fields[f].(string); ok {
				return v
			}
			return ""
		}
		getInt := func(f string) int64 {
			if v, ok := hit.Fields[f].(float64); ok {
				return int64(v)
			}
			return 0
		}
		getBool := func(f string) bool {
			v, _ := hit.Fields[f].(bool)
			return v
		}

		rec := media.RawAssetRecord{
			ID:           getStr("id"),
			MimeType:     getStr("mime_type"),
			Bucket:       getStr("bucket"),
			DateAdded:    getInt("date_added"),
			DateModified: getInt("date_modified"),
			Width:        int(getInt("width")),
			Height:       int(getInt("height")),
			Size:         getInt("size"),
			Path:         getStr("path"),
		}
		if getBool(dateTakenSetKey) {
			rec.DateTaken = getInt("date_taken")
		}
		if getBool("orientation_set") {
			o := int(getInt("orientation"))
			rec.Orientation = &o
		}
		results = append(results, rec)
	}
	return results, nil
}

func (b *BleveStore) Albums(ctx context.Context, where media.Predicate) ([]media.Album, error) {
	q, err := compileBleve(where)
	if err != nil {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	req.AddFacet("bucket", bleve.NewFacetRequest("bucket", maxAlbumFacets))

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, translateBleveError(err)
	}

	albums := []media.Album{}
	facet, ok := res.Facets["bucket"]
	if !ok || facet.Terms == nil {
		return albums, nil
	}
	for _, t := range facet.Terms.Terms() {
		if t.Term == "" {
			continue
		}
		albums = append(albums, media.Album{Title: t.Term, Count: t.Count})
	}
	return albums, nil
}

func toDoc(rec media.RawAssetRecord) assetDoc {
	d := assetDoc{
		ID:           rec.ID,
		MediaType:    int(media.KindForMimeType(rec.MimeType)),
		MimeType:     rec.MimeType,
		Bucket:       rec.Bucket,
		DateTaken:    rec.DateTaken,
		DateTakenSet: rec.DateTaken != 0,
		DateAdded:    rec.DateAdded,
		DateModified: rec.DateModified,
		Width:        rec.Width,
		Height:       rec.Height,
		Size:         rec.Size,
		Path:         rec.Path,
	}
	if rec.Orientation != nil {
		d.Orientation = *rec.Orientation
		d.OrientationSet = true
	}
	return d
}

func (b *BleveStore) Insert(ctx context.Context, rec media.RawAssetRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = b.nextID()
	}
	if err := b.InsertBatch(ctx, []media.RawAssetRecord{rec}); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (b *BleveStore) InsertBatch(_ context.Context, batch []media.RawAssetRecord) error {
	batchIndex := b.index.NewBatch()
	for _, rec := range batch {
		if rec.ID == "" {
			rec.ID = b.nextID()
		}
		seq, err := b.reserveID(rec.ID)
		if err != nil {
			return err
		}
		doc := toDoc(rec)
		doc.Seq = seq
		// Use Path as ID to ensure uniqueness and allow updates
		if err := batchIndex.Index(rec.Path, doc); err != nil {
			return translateBleveError(err)
		}
	}
	return translateBleveError(b.index.Batch(batchIndex))
}

func (b *BleveStore) DeletePaths(_ context.Context, paths []string) ([]string, error) {
	deleted := []string{}
	seen := make(map[string]bool, len(paths))
	batch := b.index.NewBatch()
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		doc, err := b.index.Document(path)
		if err != nil {
			return nil, translateBleveError(err)
		}
		if doc == nil {
			continue
		}
		batch.Delete(path)
		deleted = append(deleted, path)
	}
	if err := b.index.Batch(batch); err != nil {
		return nil, translateBleveError(err)
	}
	return deleted, nil
}

func (b *BleveStore) Count(context.Context) (int, error) {
	c, err := b.index.DocCount()
	return int(c), translateBleveError(err)
}

// GetAllPaths pages through every document id, which is the asset path.
func (b *BleveStore) GetAllPaths(ctx context.Context) ([]string, error) {
	var paths []string
	for from := 0; ; from += pathPageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pathPageSize, from, false)
		req.SortBy([]string{"_id"})

		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, translateBleveError(err)
		}
		for _, hit := range res.Hits {
			paths = append(paths, hit.ID)
		}
		if len(res.Hits) < pathPageSize {
			return paths, nil
		}
	}
}

func (b *BleveStore) RemoveStaleEntries(ctx context.Context) (int, error) {
	paths, err := b.GetAllPaths(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	batch := b.index.NewBatch()
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			batch.Delete(path)
			removed++
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return 0, translateBleveError(err)
	}
	return removed, nil
}

// compileBleve renders p as a Bleve query. Comparisons on a nullable column
// also require its set flag, matching SQL where NULL never compares true.
func compileBleve(p media.Predicate) (bleveQuery.Query, error) {
	field := func(c media.Column) (string, bool, string, error) {
		f, ok := bleveFields[c]
		if !ok {
			return "", false, "", fmt.Errorf("%w: unknown column %q", media.ErrInvalidFilter, c)
		}
		return f.name, f.numeric, f.setFlag, nil
	}
	present := func(q bleveQuery.Query, setFlag string) bleveQuery.Query {
		if setFlag == "" {
			return q
		}
		flag := bleve.NewBoolFieldQuery(true)
		flag.SetField(setFlag)
		return bleve.NewConjunctionQuery(q, flag)
	}

	switch p := p.(type) {
	case nil:
		return bleve.NewMatchAllQuery(), nil
	case media.Eq:
		name, numeric, setFlag, err := field(p.Column)
		if err != nil {
			return nil, err
		}
		q, err := equals(name, numeric, p.Value)
		if err != nil {
			return nil, err
		}
		return present(q, setFlag), nil
	case media.In:
		name, numeric, setFlag, err := field(p.Column)
		if err != nil {
			return nil, err
		}
		if len(p.Values) == 0 {
			return bleve.NewMatchNoneQuery(), nil
		}
		alts := make([]bleveQuery.Query, 0, len(p.Values))
		for _, v := range p.Values {
			q, err := equals(name, numeric, v)
			if err != nil {
				return nil, err
			}
			alts = append(alts, q)
		}
		return present(bleve.NewDisjunctionQuery(alts...), setFlag), nil
	case media.Gt:
		name, _, setFlag, err := field(p.Column)
		if err != nil {
			return nil, err
		}
		v, exclusive := float64(p.Value), false
		q := bleve.NewNumericRangeInclusiveQuery(&v, nil, &exclusive, nil)
		q.SetField(name)
		return present(q, setFlag), nil
	case media.Lte:
		name, _, setFlag, err := field(p.Column)
		if err != nil {
			return nil, err
		}
		v, inclusive := float64(p.Value), true
		q := bleve.NewNumericRangeInclusiveQuery(nil, &v, nil, &inclusive)
		q.SetField(name)
		return present(q, setFlag), nil
	case media.IsNull:
		_, _, setFlag, err := field(p.Column)
		if err != nil {
			return nil, err
		}
		if setFlag == "" {
			return bleve.NewMatchNoneQuery(), nil
		}
		q := bleve.NewBoolFieldQuery(false)
		q.SetField(setFlag)
		return q, nil
	case media.And:
		if len(p) == 0 {
			return bleve.NewMatchAllQuery(), nil
		}
		children, err := compileChildren(p)
		if err != nil {
			return nil, err
		}
		return bleve.NewConjunctionQuery(children...), nil
	case media.Or:
		if len(p) == 0 {
			return bleve.NewMatchNoneQuery(), nil
		}
		children, err := compileChildren(p)
		if err != nil {
			return nil, err
		}
		return bleve.NewDisjunctionQuery(children...), nil
	}
	return nil, fmt.Errorf("%w: unsupported predicate %T", media.ErrInvalidFilter, p)
}

func compileChildren(ps []media.Predicate) ([]bleveQuery.Query, error) {
	out := make([]bleveQuery.Query, 0, len(ps))
	for _, c := range ps {
		q, err := compileBleve(c)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func equals(field string, numeric bool, value any) (bleveQuery.Query, error) {
	if !numeric {
		q := bleve.NewTermQuery(fmt.Sprint(value))
		q.SetField(field)
		return q, nil
	}
	var v float64
	switch n := value.(type) {
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case float64:
		v = n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is numeric, got %q", media.ErrInvalidFilter, field, n)
		}
		v = f
	default:
		return nil, fmt.Errorf("%w: %s is numeric, got %T", media.ErrInvalidFilter, field, value)
	}
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &inclusive, &inclusive)
	q.SetField(field)
	return q, nil
}

func bleveSort(order media.Ordering) ([]string, error) {
	keys := make([]string, 0, len(order)+1)
	for _, k := range order {
		f, ok := bleveFields[k.Column]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort column %q", media.ErrInvalidFilter, k.Column)
		}
		if k.Descending {
			keys = append(keys, "-"+f.name)
		} else {
			keys = append(keys, f.name)
		}
	}
	return append(keys, "-seq", "-_id"), nil
}

func translateBleveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", media.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", media.ErrStoreUnavailable, err)
}
