package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fumin/qanneal"
	"github.com/fumin/qanneal/classical"
	"github.com/fumin/qanneal/mat"
	"github.com/fumin/qanneal/problem"
	"github.com/fumin/qanneal/store"
)

const (
	methodBruteForce = "bruteforce"
	methodAnneal     = "anneal"
	methodQuantum    = "quantum"

	// maxQuantumSpins bounds the dense 2^N x 2^N diagonalization.
	maxQuantumSpins = 13
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Find the ground state by brute force, simulated annealing and exact diagonalization",
	RunE: func(cmd *cobra.Command, args []string) error {
		return solve(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	f := solveCmd.Flags()
	f.Uint64("seed", 0, "seed of the annealing generator, 0 to seed from the clock")
	f.Int("trials", 5, "number of simulated annealing runs")
	f.Float64("tstart", 5.0, "starting temperature")
	f.Float64("tend", 0.1, "final temperature")
	f.Int("steps", 10000, "iterations per annealing run")
	f.Bool("stats", false, "print statistics of the quantum ground state")
	if err := viper.BindPFlags(f); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

type solution struct {
	exact   float64
	anneal  float64
	quantum float64
}

func solve(ctx context.Context) error {
	seed := viper.GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	sess, err := newSession(ctx, "solve", seed, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer sess.Close()
	p := sess.p

	fmt.Printf("=== Ising Problem: Classical & Quantum Baseline ===\n")
	printProblem(p)
	sol := solution{quantum: math.NaN()}

	// Brute force.
	fmt.Printf("\n[Brute Force] searching exact ground state...\n")
	var exactSpins problem.Spins
	elapsed, err := timed("Brute Force", func() error {
		var err error
		sol.exact, exactSpins, err = classical.BruteForce(p)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Printf("Exact ground energy: %v\n", sol.exact)
	fmt.Printf("Exact ground spins : %v\n", exactSpins)
	if err := sess.addResult(ctx, store.Result{Method: methodBruteForce, Energy: sol.exact, Spins: exactSpins, Elapsed: elapsed}); err != nil {
		return errors.Wrap(err, "")
	}

	// Simulated annealing.
	trials := viper.GetInt("trials")
	opt := classical.NewAnnealOptions().TStart(viper.GetFloat64("tstart")).TEnd(viper.GetFloat64("tend")).Steps(viper.GetInt("steps"))
	rng := rand.New(rand.NewPCG(seed, seed))
	log.Printf("seed %d", seed)
	fmt.Printf("\n[Simulated Annealing] %d trials\n", trials)
	var tr classical.TrialResult
	elapsed, err = timed("Simulated Annealing", func() error {
		var err error
		tr, err = classical.Trials(p, rng, trials, opt)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "")
	}
	for k, e := range tr.Energies {
		fmt.Printf(" Trial %d: E = %.4f\n", k+1, e)
	}
	sol.anneal = tr.Energy
	fmt.Printf("Best SA spins: %v (trial %d)\n", tr.Spins, tr.Best+1)
	if err := sess.addResult(ctx, store.Result{Method: methodAnneal, Energy: tr.Energy, Spins: tr.Spins, Elapsed: elapsed}); err != nil {
		return errors.Wrap(err, "")
	}

	// Exact diagonalization.
	switch {
	case checkQuantumSize(p) != nil:
		log.Printf("skipping diagonalization of %d spins, at most %d", p.N(), maxQuantumSpins)
	default:
		if err := solveQuantum(ctx, sess, &sol); err != nil {
			return errors.Wrap(err, "")
		}
	}

	printSummary(sol)
	return nil
}

func solveQuantum(ctx context.Context, sess *session, sol *solution) error {
	p := sess.p
	fmt.Printf("\n[Quantum Ising] Diagonalizing H_p ...\n")
	var vvs []mat.ValVec
	elapsed, err := timed("Quantum Ising", func() error {
		var err error
		vvs, err = qanneal.Spectrum(qanneal.ProblemHamiltonian(p))
		return err
	})
	if err != nil {
		return errors.Wrap(err, "")
	}
	stats, err := qanneal.GetStatistics(p.N(), vvs)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sol.quantum = stats.EigenValue[0]
	fmt.Printf("Quantum ground energy (H_p): %v\n", sol.quantum)
	fmt.Printf("Dominant classical config  : %v\n", stats.Dominant)
	fmt.Printf("Probability of that config : %v\n", stats.Probability)
	if viper.GetBool("stats") {
		fmt.Printf("First excited energy       : %v\n", stats.EigenValue[1])
		fmt.Printf("Site magnetization <Z_i>   : %.4f\n", stats.SiteZ)
		fmt.Printf("Magnetization              : %.4f\n", stats.Magnetization)
	}
	if err := sess.addResult(ctx, store.Result{Method: methodQuantum, Energy: sol.quantum, Spins: stats.Dominant, Elapsed: elapsed}); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func printSummary(sol solution) {
	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Exact ground energy (classical H_p): %v\n", sol.exact)
	fmt.Printf("Best SA energy                     : %v\n", sol.anneal)
	fmt.Printf("Quantum ground energy (H_p)        : %v\n", sol.quantum)
	fmt.Printf("Difference (exact vs quantum)      : %v\n", sol.quantum-sol.exact)
}
