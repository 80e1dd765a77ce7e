//go:build netlib
// +build netlib

package main

import _ "github.com/arnegrim/meshmap/accel"
