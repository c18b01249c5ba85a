// Package fit orchestrates one likelihood evaluation of a pixelized
// lens model: mesh construction, mapping, PSF blurring, regularization
// and the non-negative inversion, priced by the Bayesian log-evidence.
//
// What:
//
//   - Dataset bundles the observed slim data and noise vectors with the
//     mask, the PSF kernel and the image-plane grid. It is validated
//     once at setup and shared read-only across evaluations.
//   - Config selects the mesh kind and resolution, the regularization
//     scheme and coefficients, the optional adapt image, extra linear
//     light profiles and the solver options: everything that varies
//     between trial models.
//   - Run executes the full pipeline against a caller-supplied traced
//     grid (the image grid deflected by the trial mass model) and
//     returns a Result carrying the reconstruction, or a rejected
//     sample.
//
// Failure semantics:
//
// Errors fall in two classes. Setup mistakes (mismatched vector
// lengths, a missing adapt image for a brightness-adaptive
// configuration) are returned as ordinary errors: the caller's
// configuration is wrong and no amount of resampling will fix it.
// Model-dependent failures (a degenerate tessellation, an invalid
// trial coefficient, a singular or non-convergent inversion) convert
// to Result{Rejected: true, LogEvidence: -Inf} with the cause retained,
// so a non-linear search treats the trial model as maximally
// disfavoured and moves on. Rejections log at Debug level.
//
// Concurrency: a Dataset is immutable after construction; Run builds
// everything else per call, so concurrent evaluations over one Dataset
// need no locking.
package fit
