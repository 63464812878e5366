// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package batch evaluates a partitioned dataset of captured chains.
//
// Partition n is read from <certs>/certs-list_part<n*stride>.csv and written
// to <out>/evaluation-result_part<n*stride>.csv. Input rows are
//
//	<pem chain>,<sha256>,<domain>[,"<id>,<id>,..."]
//
// and every row yields exactly one result row
//
//	<sha256>,<domain>,<OK | SKIPPED | error text>
//
// Domains that are IP literals are skipped; other domains are lower-cased
// before evaluation. Partitions are spread over a fixed pool of workers and
// each partition is handled start to finish by one of them.
package batch
