// Command pyinterpctl is a small ad hoc diagnostics tool over this
// module's interpolation and geodesy packages: it answers one-off
// "what would this grid/ellipsoid compute here" questions without
// writing a Go program, the way gribinfo answers one-off questions
// about a GRIB2 file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/geodetic"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/interp"
)

var (
	opFlag     = flag.String("op", "distance", "operation: distance | bivariate")
	strategy   = flag.String("strategy", "haversine", "distance strategy: haversine | andoyer | thomas | vincenty")
	lon1Flag   = flag.Float64("lon1", 0, "distance: first point longitude (degrees)")
	lat1Flag   = flag.Float64("lat1", 0, "distance: first point latitude (degrees)")
	lon2Flag   = flag.Float64("lon2", 0, "distance: second point longitude (degrees)")
	lat2Flag   = flag.Float64("lat2", 0, "distance: second point latitude (degrees)")
	nxFlag     = flag.Int("nx", 10, "bivariate: synthetic grid width")
	nyFlag     = flag.Int("ny", 10, "bivariate: synthetic grid height")
	xFlag      = flag.Float64("x", 0, "bivariate: target X coordinate")
	yFlag      = flag.Float64("y", 0, "bivariate: target Y coordinate")
	methodFlag = flag.String("method", "bilinear", "bivariate: bilinear | nearest | idw")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -op=<distance|bivariate> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -op=distance -lon1=2.35 -lat1=48.85 -lon2=-74.0 -lat2=40.7\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -op=bivariate -nx=20 -ny=20 -x=4.3 -y=5.7 -method=idw\n", os.Args[0])
	}
	flag.Parse()

	var err error
	switch *opFlag {
	case "distance":
		err = runDistance()
	case "bivariate":
		err = runBivariate()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown -op %q\n\n", *opFlag)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseStrategy(name string) (geodetic.DistanceStrategy, error) {
	switch name {
	case "haversine":
		return geodetic.Haversine, nil
	case "andoyer":
		return geodetic.Andoyer, nil
	case "thomas":
		return geodetic.Thomas, nil
	case "vincenty":
		return geodetic.Vincenty, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}

func runDistance() error {
	strat, err := parseStrategy(*strategy)
	if err != nil {
		return err
	}
	d := geodetic.Distance(geodetic.WGS84, strat, *lon1Flag, *lat1Flag, *lon2Flag, *lat2Flag)
	fmt.Printf("%.3f m\n", d)
	return nil
}

func runBivariate() error {
	if *nxFlag < 2 || *nyFlag < 2 {
		return fmt.Errorf("-nx and -ny must each be at least 2")
	}
	xs := make([]float64, *nxFlag)
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := make([]float64, *nyFlag)
	for j := range ys {
		ys[j] = float64(j)
	}
	xAxis, err := axis.New(xs)
	if err != nil {
		return err
	}
	yAxis, err := axis.New(ys)
	if err != nil {
		return err
	}

	nx, ny := *nxFlag, *nyFlag
	values := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			values[i*ny+j] = float64(i*i + j*j)
		}
	}
	g, err := grid.BuildStore2D(xAxis, yAxis, values)
	if err != nil {
		return err
	}

	var method interp.Method
	switch *methodFlag {
	case "bilinear":
		method = interp.Bilinear
	case "nearest":
		method = interp.Nearest
	case "idw":
		method = interp.InverseDistanceWeighting
	default:
		return fmt.Errorf("unknown method %q", *methodFlag)
	}

	v, err := interp.Bivariate(g, []float64{*xFlag}, []float64{*yFlag}, interp.WithMethod(method))
	if err != nil {
		return err
	}
	fmt.Printf("%.6f\n", v[0])
	return nil
}
