/*
Package workers sizes worker pools from the CPU quota of the process.

runtime.NumCPU reports host CPUs even inside a container, while GOMAXPROCS
follows the cgroup quota. Count scales GOMAXPROCS by a per-workload
multiplier and caps the result:

	n := workers.ForIO(16) // 2 per CPU, at most 16

# Environment Variable Override

TAGS_WORKERS pins the count for every pool, still subject to each pool's
cap:

	TAGS_WORKERS=4 tagctl import tags.yaml
*/
package workers
