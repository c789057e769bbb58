// Package ir provides the attribute value model shared by every motif package.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Null is an explicit value (IRNull), never a nil interface in stored rows
//   - Canonical JSON (RFC 8785) is the single encoding used for join keys
//     and fingerprints
package ir
