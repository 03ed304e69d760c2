// Package models defines the domain entities of the community directory.
//
// The package contains three groups of types:
//
// 1. Catalog reference data, immutable once loaded:
//   - [CommunityEntry] : a listed Discord server with membership and boost metrics
//   - [CatalogItem] : an entry of the secondary game/server catalog
//   - [Product] : a boost package sold in the boutique
//
// 2. Playback data owned by the playback controller:
//   - [Track] : a playable video reference with display metadata
//   - [PlaybackState] : current track, transport state and volume
//
// 3. Identity:
//   - [User] : the normalized principal exposed to pages
//
// Category-like fields are closed enumerations ([Category], [PromotionTier], [ItemCategory]).
// They unmarshal case-insensitively from text and reject unknown values, so data snapshots
// using display labels ("Advertising") and tags ("advertising") decode to the same value.
package models
