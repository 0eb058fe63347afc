// Package bahc implements k-th order Bootstrapped Average-Linkage
// Hierarchical Clustering filtering (k-BAHC) of correlation and covariance
// matrices.
//
// k-BAHC estimates a cleaned correlation or covariance matrix from a short,
// noisy multivariate sample. For every bootstrap resample it builds an
// average-linkage dendrogram over the correlations, replaces each
// hierarchical block with its mean, subtracts that explained structure and
// repeats on the residual up to order k. The filtered matrices are made
// positive semi-definite and averaged over bootstraps.
//
// Basic usage:
//
//	cfg := bahc.DefaultConfig()
//	cfg.Orders = []int{1, 2}
//	cfg.Seed = 7
//	res, err := bahc.Filter(sample, cfg) // sample: N series × T observations
//	// res.Matrices[i] is the filtered covariance at order cfg.Orders[i]
//
// Set Config.AsCorrelation to get correlation matrices instead.
//
// # Regularization
//
// Filtered matrices are generally not positive semi-definite. MethodNoNeg
// clips negative eigenvalues (NoNeg) and rescales to the original diagonal.
// MethodNear runs Dykstra's alternating projections (Near), which keeps the
// diagonal by construction and costs up to NearConfig.MaxIter
// eigendecompositions.
//
// # Building blocks
//
// The stages are exported for callers that want to run them separately:
// AverageLinkage and Linkage for the clustering step, ExtractBipartitions and
// BlockAverage for a single filtering round, and ResidualFilter or
// FilterOrders for the multi-order recursion on a single correlation matrix.
package bahc
