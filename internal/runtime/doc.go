// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides base image
// pulls and container creation. Base images are pulled by registry
// reference, unpacked for the target platform, and used to create
// containers with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in as tar streams,
// and the final filesystem state can be committed and exported as a new
// OCI archive carrying the image's runtime contract (working directory,
// exposed port, entry command). When the container is no longer needed
// it should be destroyed to release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "stowd")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ref, err := rt.Pull(ctx, "python:3.12-slim", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartContainer(ctx, ref, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, []string{"pip", "--version"}, nil, "")
//	if err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "output", runtime.ImageConfig{
//	    WorkingDir:  "/app",
//	    ExposedPort: 8080,
//	    Entrypoint:  []string{"python", "app.py"},
//	})
package runtime
