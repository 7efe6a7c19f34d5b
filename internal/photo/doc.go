// Package photo contains the domain records of the collection and the
// filename metadata parser that infers dates, titles and decade buckets
// from the naming convention used by the archive.
package photo
