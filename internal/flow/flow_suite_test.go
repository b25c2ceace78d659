// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package flow_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

func TestFlowScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sign-in Flow Suite")
}
