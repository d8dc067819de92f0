// Package source materializes a build's project root.
//
// A build reads its descriptor, dependency manifest, and source tree from a
// project root, which is either a directory already on the local filesystem
// or a git repository shallow-cloned into a temporary directory for the
// duration of the build.
package source
