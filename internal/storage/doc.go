// Package storage defines the persistence interfaces for the generation
// engine.
//
// TableStore is the read-only source of generation tables; DungeonStore
// persists generated dungeons. Implementations live in subpackages: file
// (JSON files and embedded defaults), sqlite, and postgres. The engine only
// depends on the interfaces here.
//
// # Error Types
//
//   - ErrNotFound: indicates a requested record is missing. Implementations
//     wrap it with the record's identity.
package storage
