// Package memory applies a container memory limit to the Go runtime.
//
// Kubernetes can publish a container's memory limit through the Downward
// API:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//
// ConfigureFromEnv turns that into a soft limit (debug.SetMemoryLimit) of
// MEMORY_RATIO times the container limit, 0.9 by default, so the garbage
// collector works harder before the kernel kills the process. An explicit
// GOMEMLIMIT always takes precedence.
package memory
