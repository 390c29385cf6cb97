package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fumin/qanneal"
	"github.com/fumin/qanneal/problem"
	"github.com/fumin/qanneal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the gap between the two lowest levels of H(s) for s in [0, 1]",
	RunE: func(cmd *cobra.Command, args []string) error {
		return scan(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	f := scanCmd.Flags()
	f.Int("points", 21, "number of s values, including both ends")
	if err := viper.BindPFlags(f); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func checkQuantumSize(p *problem.Problem) error {
	if p.N() > maxQuantumSpins {
		return errors.Errorf("%d spins, at most %d", p.N(), maxQuantumSpins)
	}
	return nil
}

func scan(ctx context.Context) error {
	sess, err := newSession(ctx, "scan", 0, checkQuantumSize)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer sess.Close()
	p := sess.p

	fmt.Printf("=== Spectrum scan for H(s) ===\n")
	printProblem(p)
	fmt.Printf("A(s) = %g (1-s), B(s) = %g s\n", sess.cfg.Schedule.A0, sess.cfg.Schedule.B0)

	points := viper.GetInt("points")
	throttler := util.NewSkipThrottler(10 * time.Second)
	var storeErr error
	var k int
	observe := func(g qanneal.Gap) {
		k++
		if throttler.Ok() || k == points {
			log.Printf("%d/%d s %f", k, points, g.S)
		}
		if storeErr == nil {
			storeErr = sess.addGap(ctx, g)
		}
	}

	fmt.Printf("s\tE0\t\tE1\t\tgap\n")
	var res qanneal.Scan
	_, err = timed("Spectrum scan", func() error {
		var err error
		res, err = qanneal.ScanGap(p, points, sess.cfg.Schedule, observe)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "")
	}
	if storeErr != nil {
		return errors.Wrap(storeErr, "")
	}
	for _, g := range res.Points {
		fmt.Printf("%.2f\t%.6f\t%.6f\t%.6f\n", g.S, g.E0, g.E1, g.Delta)
	}

	fmt.Printf("\n=== Summary of gap ===\n")
	fmt.Printf("Minimum gap Δ_min ≈ %.6f at s ≈ %.3f\n", res.Min.Delta, res.Min.S)
	return nil
}
