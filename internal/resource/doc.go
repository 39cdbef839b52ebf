// Package resource bounds the memory and read throughput used while
// textures are loaded.
//
// Memory is reserved per decode with a weighted semaphore; callers block
// until enough budget is free:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   512 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	if err := rc.AcquireMemory(ctx, need); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(need)
//
// Reads are throttled by a token bucket with a one-second burst.
package resource
