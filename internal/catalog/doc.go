// Package catalog implements the queries that span more than one row or
// entity type: which presets use a model, filtered and sorted list views,
// and usage-checked model deletion.
//
// Every query fetches full entity sets from the store and filters in memory.
// Preset and model counts are small and local, so there is no reverse index
// from models to presets.
package catalog
