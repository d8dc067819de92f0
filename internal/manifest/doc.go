// Package manifest defines the build descriptor for packaging a service.
//
// A descriptor (stowfile.toml) declares the six inputs of an image build:
// the base runtime image, the working directory, the dependency manifest,
// the source tree, the listening port, and the entry command. Example:
//
//	base = "docker.io/library/python:3.12-slim"
//	workdir = "/app"
//	requirements = "requirements.txt"
//	source = "."
//	port = 8080
//	entrypoint = ["python", "app.py"]
//
// All fields except base have defaults matching the example above, so the
// minimal descriptor is a single base line. The requirements file content
// is never interpreted by stowd; it is passed verbatim to the installer.
package manifest
