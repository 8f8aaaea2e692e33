package media

// MediaTypePredicate restricts a query to the given asset type.
func MediaTypePredicate(assetType AssetType) (Predicate, error) {
	switch assetType {
	case AssetTypePhotos:
		return Eq{Column: ColumnMediaType, Value: int(MediaKindImage)}, nil
	case AssetTypeVideos:
		return Eq{Column: ColumnMediaType, Value: int(MediaKindVideo)}, nil
	case AssetTypeAll:
		return In{Column: ColumnMediaType, Values: []any{int(MediaKindVideo), int(MediaKindImage)}}, nil
	}
	return nil, newError(CodeUnableToFilter, ErrInvalidFilter,
		"Invalid filter option: '%s'. Expected one of '%s', '%s' or '%s'.",
		assetType, AssetTypePhotos, AssetTypeVideos, AssetTypeAll)
}

// BuildQuery turns the filter parameters of q into a predicate and ordering.
// It performs no I/O; the only failure is an unknown asset type.
func BuildQuery(q AssetQuery) (Predicate, Ordering, error) {
	typeClause, err := MediaTypePredicate(q.AssetType)
	if err != nil {
		return nil, nil, err
	}
	where := And{typeClause}

	if q.GroupName != "" {
		where = append(where, Eq{Column: ColumnBucket, Value: q.GroupName})
	}

	if len(q.MimeTypes) > 0 {
		values := make([]any, 0, len(q.MimeTypes))
		for _, m := range q.MimeTypes {
			values = append(values, m)
		}
		where = append(where, In{Column: ColumnMimeType, Values: values})
	}

	// date_taken is millis and may be unset; date_added is seconds.
	if q.FromTime > 0 {
		where = append(where, Or{
			Gt{Column: ColumnDateTaken, Value: q.FromTime},
			And{IsNull{Column: ColumnDateTaken}, Gt{Column: ColumnDateAdded, Value: q.FromTime / 1000}},
		})
	}
	if q.ToTime > 0 {
		where = append(where, Or{
			Lte{Column: ColumnDateTaken, Value: q.ToTime},
			And{IsNull{Column: ColumnDateTaken}, Lte{Column: ColumnDateAdded, Value: q.ToTime / 1000}},
		})
	}

	return where, NewestFirst, nil
}
