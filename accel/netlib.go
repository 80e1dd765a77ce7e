//go:build netlib
// +build netlib

// Package accel optionally swaps gonum's pure-Go BLAS/LAPACK for the netlib
// cgo bindings, for the Direct RBF mapping's Cholesky/QR factorizations on
// large center counts. The default build stays pure Go; build with
// -tags netlib to opt in.
package accel

/*
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
*/
import "C"

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	netblas "gonum.org/v1/netlib/blas/netlib"
	netlapack "gonum.org/v1/netlib/lapack/netlib"
)

func init() {
	blas64.Use(netblas.Implementation{})
	lapack64.Use(netlapack.Implementation{})
	fmt.Println("accel: using netlib BLAS/LAPACK")
}
