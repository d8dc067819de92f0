// Package build executes the image build pipeline against a container
// runtime.
//
// A build transforms three ordered inputs — a base runtime image, a
// dependency manifest, and an application source tree — into a single
// immutable OCI image plus its runtime contract (working directory,
// exposed port, entry command). The pipeline is strictly linear: base
// selection, working directory, dependency installation, source copy,
// port declaration, entry command, finalize. The dependency manifest is
// always installed before the source tree is copied, so that frequent
// source edits do not invalidate the dependency layers.
//
// Container operations are delegated to the runtime package through the
// [Engine] and [Container] interfaces. Each build carries its own
// [Builder]; independent builds share no state and may run concurrently.
//
// Example usage:
//
//	artifact, err := build.Run(ctx, build.NewEngine(rt), build.Options{
//	    Service:  svc,
//	    Resource: "my-service",
//	    Root:     ".",
//	    Output:   "dist",
//	})
//	if err != nil {
//	    return err
//	}
package build
