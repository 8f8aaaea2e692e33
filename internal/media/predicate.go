package media

// Column names a field of the asset index. Store backends map them onto
// their own schema.
type Column string

const (
	ColumnMediaType    Column = "media_type"
	ColumnMimeType     Column = "mime_type"
	ColumnBucket       Column = "bucket"
	ColumnDateTaken    Column = "date_taken"
	ColumnDateAdded    Column = "date_added"
	ColumnDateModified Column = "date_modified"
	ColumnPath         Column = "path"
)

// Predicate is a backend-neutral filter over the asset index.
type Predicate interface {
	predicate()
}

// Eq matches Column = Value.
type Eq struct {
	Column Column
	Value  any
}

// In matches Column IN (Values...).
type In struct {
	Column Column
	Values []any
}

// Gt matches Column > Value.
type Gt struct {
	Column Column
	Value  int64
}

// Lte matches Column <= Value.
type Lte struct {
	Column Column
	Value  int64
}

// IsNull matches rows where Column is unset.
type IsNull struct {
	Column Column
}

// And matches when every child matches; an empty And matches everything.
type And []Predicate

// Or matches when any child matches.
type Or []Predicate

func (Eq) predicate()     {}
func (In) predicate()     {}
func (Gt) predicate()     {}
func (Lte) predicate()    {}
func (IsNull) predicate() {}
func (And) predicate()    {}
func (Or) predicate()     {}

type SortKey struct {
	Column     Column
	Descending bool
}

// Ordering lists sort keys, most significant first.
type Ordering []SortKey

// NewestFirst is the ordering every asset query uses: added time, then
// modified time, both descending.
var NewestFirst = Ordering{
	{Column: ColumnDateAdded, Descending: true},
	{Column: ColumnDateModified, Descending: true},
}
