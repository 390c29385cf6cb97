package main

import (
	"fmt"

	"github.com/fumin/qanneal/problem"
)

// sampleProblem is a sparse instance of 11 spins, of which 5 are free.
func sampleProblem() *problem.Problem {
	couplings := map[[2]int]float64{
		{0, 1}: 1.0,
		{0, 2}: -0.5,
		{1, 2}: 0.8,
		{2, 3}: 1.2,
		{3, 4}: -1.0,
		{4, 5}: 0.7,
		{0, 5}: -0.9,
	}
	fields := map[int]float64{
		0: 0.2,
		3: -0.3,
	}
	p, err := problem.New(11, couplings, fields)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return p
}
