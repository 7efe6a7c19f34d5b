// Package participation stores visitor photo contributions: uploaded
// files under a per-contribution directory and metadata appended to a
// flat JSON log reviewed out of band.
package participation
