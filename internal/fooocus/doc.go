// Package fooocus converts between stored presets and the preset files read
// by Fooocus (presets/*.json).
//
// Fooocus keeps every setting as a flat default_* key. LoRAs are
// [name, modelName, weight] arrays and the download maps are copied through
// untouched. Catalog ids (baseModelId and friends) exist only in the store
// and are not written to files.
//
// Import treats zero values as missing, the same way Fooocus itself falls
// back to its defaults, so a file with default_steps: 0 imports with 30 steps.
package fooocus
