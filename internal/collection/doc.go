// Package collection reads the photo archive from the filesystem.
//
// The directory tree under the collection root is the source of truth:
// top-level directories are categories, their subdirectories are
// subfolders, and image files become photo records assembled on every
// request from the parsed filename, the thumbnail cache and the audio
// sibling lookup. Nothing is indexed ahead of time.
package collection
