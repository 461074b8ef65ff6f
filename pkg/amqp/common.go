package amqp

// CopyTable copies contents of in into new table and returns it. Table is not
// deep-copied, only shallow-copied.
func CopyTable(in Table) Table {
	// If in is nil, return nil.
	if in == nil {
		return nil
	}

	newTable := make(Table, len(in))
	for key, value := range in {
		newTable[key] = value
	}

	return newTable
}

// mergeTables returns a copy of base with every key of override written on top of it.
// Returns nil if both tables are nil.
func mergeTables(base Table, override Table) Table {
	if base == nil && override == nil {
		return nil
	}

	merged := make(Table, len(base)+len(override))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range override {
		merged[key] = value
	}

	return merged
}
