// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package job lays out the files an evaluator reads.
//
// A job directory is named after the client, partition and worker that own
// it, for example jobs/chrome-300-2, and holds two modules:
//
//	certs.pl   fixed preamble followed by the chain's facts
//	env.pl     :- module(env, [domain/1, client/1]).
//	           domain("example.com").
//	           client(chrome).
//
// Directories are overwritten row after row and never removed.
package job
