// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package translate

import (
	"errors"
	"fmt"
)

var (
	// ErrParsing indicates a certificate the encoder could not decode.
	ErrParsing = errors.New("translate: certificate parsing error")

	// ErrChainLinkage groups the failures of the signature walk.
	ErrChainLinkage = errors.New("translate: chain linkage error")

	// ErrInvalidSignature indicates a supplied intermediate whose key does not
	// verify its predecessor's signature.
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", ErrChainLinkage)

	// ErrVerifyEngine indicates the signature could not be checked at all,
	// for example an unsupported or disallowed algorithm.
	ErrVerifyEngine = fmt.Errorf("%w: verification engine failure", ErrChainLinkage)
)
