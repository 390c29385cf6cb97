// Command qanneal finds ground states of Ising problems, and scans the spectral gap of the annealing Hamiltonian.
//
//	qanneal solve -p problem.yaml --trials 5
//	qanneal scan --points 21
package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fumin/qanneal"
	"github.com/fumin/qanneal/problem"
	"github.com/fumin/qanneal/store"
)

var rootCmd = &cobra.Command{
	Use:   "qanneal",
	Short: "Ground states of Ising problems by brute force, simulated annealing and exact diagonalization",
	Long: `
Solves a classical Ising problem E = -Σ J_ij s_i s_j - Σ h_i s_i three ways and compares them,
or scans the gap of H(s) = A(s) H_d + B(s) H_p.

Flags can also be set in $HOME/.qanneal.yaml or by QANNEAL_ environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.qanneal.yaml)")
	pf.StringP("problem", "p", "", "problem file in YAML or qubist format, the built-in sample if empty")
	pf.String("db", filepath.Join("~", ".qanneal", "qanneal.db"), "sqlite database recording runs, empty to disable")
	pf.String("profile", "", "directory to write a cpu profile to, empty to disable")
	pf.Float64("a0", 1, "driver amplitude, A(s) = a0 (1-s)")
	pf.Float64("b0", 1, "problem amplitude, B(s) = b0 s")
	if err := viper.BindPFlags(pf); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}

	viper.SetEnvPrefix("qanneal")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Printf("%+v", err)
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".qanneal")
	}
	if err := viper.ReadInConfig(); err == nil {
		log.Printf("config %s", viper.ConfigFileUsed())
	}
}

type config struct {
	Problem  string
	DB       string
	Profile  string
	Schedule qanneal.Schedule
}

func readConfig() (config, error) {
	cfg := config{
		Problem:  viper.GetString("problem"),
		Profile:  viper.GetString("profile"),
		Schedule: qanneal.Schedule{A0: viper.GetFloat64("a0"), B0: viper.GetFloat64("b0")},
	}
	if db := viper.GetString("db"); db != "" {
		var err error
		cfg.DB, err = homedir.Expand(db)
		if err != nil {
			return config{}, errors.Wrap(err, db)
		}
	}
	return cfg, nil
}

func loadProblem(path string) (*problem.Problem, error) {
	if path == "" {
		return sampleProblem(), nil
	}
	p, err := problem.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return p, nil
}

// session is the state shared by the steps of a command.
type session struct {
	cfg   config
	p     *problem.Problem
	store *store.Store
	run   int64
	stop  func()
}

// newSession loads the problem and, when check accepts it, records a new run.
// check may be nil.
func newSession(ctx context.Context, command string, seed uint64, check func(*problem.Problem) error) (*session, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	s := &session{cfg: cfg, stop: func() {}}
	s.p, err = loadProblem(cfg.Problem)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if check != nil {
		if err := check(s.p); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}

	if cfg.DB != "" {
		s.store, err = store.Open(ctx, cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		s.run, err = s.store.NewRun(ctx, command, seed, s.p)
		if err != nil {
			closeStore(s.store)
			return nil, errors.Wrap(err, "")
		}
		log.Printf("run %d in %s", s.run, cfg.DB)
	}

	if cfg.Profile != "" {
		s.stop = profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile), profile.NoShutdownHook).Stop
	}
	return s, nil
}

func (s *session) Close() {
	s.stop()
	if s.store != nil {
		closeStore(s.store)
	}
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		log.Printf("%+v", err)
	}
}

func (s *session) addResult(ctx context.Context, r store.Result) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.AddResult(ctx, s.run, r); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s *session) addGap(ctx context.Context, g qanneal.Gap) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.AddGap(ctx, s.run, g); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func printProblem(p *problem.Problem) {
	fmt.Printf("N = %d\n", p.N())
	fmt.Printf("J couplings:")
	for _, c := range p.Couplings() {
		fmt.Printf(" (%d,%d):%g", c.I, c.J, c.W)
	}
	fmt.Printf("\nh fields   :")
	for _, f := range p.Fields() {
		fmt.Printf(" %d:%g", f.I, f.H)
	}
	fmt.Printf("\n")
}

// timed runs f and logs how long it took.
func timed(label string, f func() error) (time.Duration, error) {
	start := time.Now()
	err := f()
	elapsed := time.Since(start)
	log.Printf("[%s] elapsed time: %.4f s", label, elapsed.Seconds())
	return elapsed, err
}

func main() {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := rootCmd.Execute(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
