package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queue-sim/queue-sim/sim/dist"
)

// erlangB computes the Erlang-B blocking probability for c channels at
// offered load a, via the standard recursion.
func erlangB(c int, a float64) float64 {
	b := 1.0
	for n := 1; n <= c; n++ {
		b = a * b / (float64(n) + a*b)
	}
	return b
}

// erlangC computes the Erlang-C delay probability for k channels at
// offered load a = lambda/mu.
func erlangC(k int, a float64) float64 {
	b := erlangB(k, a)
	kf := float64(k)
	return kf * b / (kf - a*(1.0-b))
}

func TestMM1_ClosedForm(t *testing.T) {
	lam, mu := 1.0, 2.0
	q := mm1System(t, lam, mu)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)

	rho := lam / mu
	wantT := 1.0 / (mu - lam)
	wantN := rho / (1.0 - rho)
	assert.InEpsilon(t, wantT, res.MeanT, 0.05, "M/M/1 mean response time")
	assert.InEpsilon(t, wantN, res.MeanN, 0.05, "M/M/1 mean number in system")
}

func TestMM1_SeededScenario(t *testing.T) {
	q := mm1System(t, 1.0, 2.0)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)
	assert.Greater(t, res.MeanT, 0.95)
	assert.Less(t, res.MeanT, 1.05)
}

func TestMG1FCFS_PollaczekKhinchine(t *testing.T) {
	// Uniform(0.3, 0.7) service: E[S] = 0.5, E[S^2] = 0.79/3.
	lam := 1.6
	meanS := 0.5
	meanS2 := (0.09 + 0.21 + 0.49) / 3.0
	rho := lam * meanS
	wantT := meanS + lam*meanS2/(2.0*(1.0-rho))

	server := mustServer(t, PolicyFCFS, mustUniform(t, 0.3, 0.7))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)
	assert.InEpsilon(t, wantT, res.MeanT, 0.05, "M/G/1 Pollaczek-Khinchine")
}

func TestMG1PS_Insensitivity(t *testing.T) {
	// E[T] = E[S]/(1-rho) for any service distribution under PS.
	lam := 1.6
	wantT := 0.5 / (1.0 - 0.8)

	server := mustServer(t, PolicyPS, mustUniform(t, 0.3, 0.7))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)
	assert.Greater(t, res.MeanT, 0.95*wantT)
	assert.Less(t, res.MeanT, 1.05*wantT)
}

func TestMMk_ErlangC(t *testing.T) {
	lam, mu, k := 2.0, 1.0, 3
	a := lam / mu
	wantT := 1.0/mu + erlangC(k, a)/(float64(k)*mu-lam)

	server := mustServer(t, PolicyFCFS, mustExp(t, mu), WithServers(k))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)
	assert.InEpsilon(t, wantT, res.MeanT, 0.05, "M/M/k Erlang-C mean response time")
}

func TestMMcc_ErlangBLoss(t *testing.T) {
	lam, mu, c := 2.0, 1.0, 3
	wantLoss := erlangB(c, lam/mu)

	server := mustServer(t, PolicyFCFS, mustExp(t, mu), WithServers(c), WithCapacity(c))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	_, err = q.Sim(500000, 42)
	require.NoError(t, err)

	st := q.Station(0)
	pLoss := float64(st.NumRejected()) / float64(st.NumArrivals())
	assert.InDelta(t, wantLoss, pLoss, 0.02, "M/M/c/c Erlang-B loss probability")
}

func TestMM1K_LossProbability(t *testing.T) {
	lam, mu := 1.0, 2.0
	K := 5
	rho := lam / mu
	wantLoss := (1.0 - rho) * math.Pow(rho, float64(K)) / (1.0 - math.Pow(rho, float64(K+1)))

	server := mustServer(t, PolicyFCFS, mustExp(t, mu), WithCapacity(K))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	_, err = q.Sim(500000, 42)
	require.NoError(t, err)

	st := q.Station(0)
	pLoss := float64(st.NumRejected()) / float64(st.NumArrivals())
	assert.InDelta(t, wantLoss, pLoss, 0.01, "M/M/1/K loss probability")
}

func TestLittlesLaw_AcrossPolicies(t *testing.T) {
	lam := 1.0
	for _, policy := range []Policy{PolicyFCFS, PolicyPS, PolicyFB, PolicySRPT} {
		server := mustServer(t, policy, mustExp(t, 2.0))
		q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
		require.NoError(t, err)
		res, err := q.Sim(200000, 42)
		require.NoError(t, err)

		// For a stable system the effective departure rate equals the
		// arrival rate, and N = lambda * T.
		lamEff := res.MeanN / res.MeanT
		assert.InEpsilon(t, lam, lamEff, 0.10, "policy %s: Little's Law", policy)
	}
}

func TestResponseTimeMean_MatchesMeanT(t *testing.T) {
	for _, policy := range []Policy{PolicyFCFS, PolicyPS, PolicyFB, PolicySRPT} {
		server := mustServer(t, policy, mustExp(t, 2.0))
		q, err := NewQueueSystem([]Server{server}, mustExp(t, 1.0))
		require.NoError(t, err)
		res, err := q.Sim(200000, 42, WithResponseTimes())
		require.NoError(t, err)

		resp := q.ResponseTimes()
		require.Len(t, resp, 200000)
		sum := 0.0
		for _, v := range resp {
			sum += v
		}
		mean := sum / float64(len(resp))
		assert.InEpsilon(t, res.MeanT, mean, 0.05, "policy %s: tracked responses vs E[T]", policy)
	}
}

func TestErlangBLoss_SeededScenario(t *testing.T) {
	// FCFS(Exp(1), k=3, capacity=3), arrivals Exp(2): loss within
	// Erlang-B(3, 2) +- 0.02.
	server := mustServer(t, PolicyFCFS, mustExp(t, 1.0), WithServers(3), WithCapacity(3))
	q, err := NewQueueSystem([]Server{server}, mustExp(t, 2.0))
	require.NoError(t, err)
	_, err = q.Sim(500000, 42)
	require.NoError(t, err)
	st := q.Station(0)
	pLoss := float64(st.NumRejected()) / float64(st.NumArrivals())
	assert.InDelta(t, erlangB(3, 2.0), pLoss, 0.02)
}

func TestTandemFCFSSRPT_SeededScenario(t *testing.T) {
	s0 := mustServer(t, PolicyFCFS, mustExp(t, 4.0))
	s1 := mustServer(t, PolicySRPT, mustExp(t, 4.0))
	q, err := NewQueueSystem([]Server{s0, s1}, mustExp(t, 1.0))
	require.NoError(t, err)
	res, err := q.Sim(50000, 42)
	require.NoError(t, err)
	assert.Greater(t, res.MeanN, 0.0)
	assert.Greater(t, res.MeanT, 0.0)
}

func TestBoundedParetoService_StableUnderPS(t *testing.T) {
	// Heavy-tailed sizes with mean ~1.466 at lambda 0.5: rho ~0.73.
	// PS insensitivity still pins E[T] = E[S]/(1-rho).
	sizes, err := dist.NewBoundedPareto(0.5, 1000.0, 1.5)
	require.NoError(t, err)
	meanS := math.Pow(0.5, 1.5) / (1 - math.Pow(0.5/1000.0, 1.5)) *
		(1.5 / 0.5) * (math.Pow(0.5, -0.5) - math.Pow(1000.0, -0.5))
	lam := 0.5
	rho := lam * meanS
	wantT := meanS / (1.0 - rho)

	server := mustServer(t, PolicyPS, sizes)
	q, err := NewQueueSystem([]Server{server}, mustExp(t, lam))
	require.NoError(t, err)
	res, err := q.Sim(500000, 42)
	require.NoError(t, err)
	assert.InEpsilon(t, wantT, res.MeanT, 0.10, "M/BP/1-PS mean response time")
}
