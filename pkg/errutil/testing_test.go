// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/phoneauth/phoneauth/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("SESSION_SAVE_FAILED").Errorf("write failed")
	errutil.AssertErrorCode(t, err, "SESSION_SAVE_FAILED")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("key", "user_token").Errorf("write failed")
	errutil.AssertErrorContext(t, err, "key", "user_token")
}
