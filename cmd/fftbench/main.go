// Command fftbench measures host-engine transform throughput for a list of
// sizes, in and out of place, forward and inverse.
package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/devfft"
)

func main() {
	var (
		sizeList = flag.String("sizes", "256,1024,4096,16384", "comma-separated transform sizes")
		iters    = flag.Int("iters", 50, "benchmark iterations")
		warmup   = flag.Int("warmup", 5, "warmup iterations")
		mode     = flag.String("mode", "all", "benchmark mode: forward, inverse, all")
		inPlace  = flag.Bool("inplace", false, "transform in place")
	)
	flag.Parse()

	sizes := parseSizes(*sizeList)
	if len(sizes) == 0 {
		fmt.Println("no sizes specified")
		return
	}

	eng := devfft.NewHostEngine()
	ref := devfft.NewEngineRef(eng)
	queue := eng.NewQueue()

	fmt.Printf("iters=%d warmup=%d inplace=%v\n", *iters, *warmup, *inPlace)
	fmt.Printf("%8s  %8s  %12s\n", "size", "mode", "ns/op")

	for _, n := range sizes {
		for _, dir := range resolveDirections(*mode) {
			ns, err := benchmarkSize(ref, queue, n, dir, *iters, *warmup, *inPlace)
			if err != nil {
				fmt.Printf("%8d  %8s  error: %v\n", n, dir, err)
				continue
			}
			fmt.Printf("%8d  %8s  %12.1f\n", n, dir, ns)
		}
	}
}

func benchmarkSize(ref *devfft.EngineRef, queue devfft.Queue, n int, dir devfft.Direction, iters, warmup int, inPlace bool) (float64, error) {
	plan, err := devfft.NewPlan1D(ref, queue, n, dir)
	if err != nil {
		return 0, err
	}
	defer plan.Close()

	src := make([]complex64, n)
	for i := range src {
		src[i] = complex(float32(i%17)-8, float32(i%13)*0.25)
	}

	in := devfft.NewHostVector(n)
	out := in
	if !inPlace {
		out = devfft.NewHostVector(n)
	}
	if err := in.Upload(src); err != nil {
		return 0, err
	}

	for i := 0; i < warmup; i++ {
		if err := plan.Transform(in).Evaluate(out, devfft.Assign); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := plan.Transform(in).Evaluate(out, devfft.Assign); err != nil {
			return 0, err
		}
	}
	elapsed := time.Since(start)

	return float64(elapsed.Nanoseconds()) / float64(iters), nil
}

func resolveDirections(mode string) []devfft.Direction {
	switch mode {
	case "forward":
		return []devfft.Direction{devfft.Forward}
	case "inverse":
		return []devfft.Direction{devfft.Inverse}
	default:
		return []devfft.Direction{devfft.Forward, devfft.Inverse}
	}
}

func parseSizes(list string) []int {
	var sizes []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			fmt.Printf("skipping invalid size %q\n", part)
			continue
		}
		sizes = append(sizes, n)
	}
	return sizes
}
