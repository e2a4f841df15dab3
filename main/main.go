package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/phil-mansfield/dfngen"
	"github.com/phil-mansfield/dfngen/io"
	"github.com/phil-mansfield/dfngen/props"
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var generate, exampleConfig string
	vars := map[string]*string{
		"Generate":      &generate,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&generate, "Generate", "",
		"Configuration file for [Generate] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Generate', "+
			"'Exclusion', and 'UserFracture'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Generate":
		wrap, err := io.ReadGenerateConfig(generate)
		if err != nil {
			log.Fatal(err.Error())
		}
		generateMain(wrap)

	case "ExampleConfig":
		switch exampleConfig {
		case "Generate":
			fmt.Println(io.ExampleGenerateFile)
		case "Exclusion":
			fmt.Println(io.ExampleExclusionFile)
		case "UserFracture":
			fmt.Println(io.ExampleUserFractureFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Generate', 'Exclusion', and 'UserFracture'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but dfngen "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func generateSetupIO(con *io.GenerationConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

func generateMain(wrap *io.GenerateWrapper) {
	con := &wrap.Generation
	fg := generateSetupIO(con)
	defer fg.Close()

	log.Println("Running Generate main.")

	fams, err := wrap.Families()
	if err != nil {
		log.Fatal(err.Error())
	}
	if con.ValidRadiiFile() {
		if err := io.ReadRadii(con.RadiiFile, fams); err != nil {
			log.Fatal(err.Error())
		}
	}

	ap, err := wrap.Aperture.Aperture()
	if err != nil {
		log.Fatal(err.Error())
	}
	perm, err := wrap.Permeability.Permeability()
	if err != nil {
		log.Fatal(err.Error())
	}

	rng := wrap.Generator()
	assigner, err := props.NewAssigner(ap, perm, rng)
	if err != nil {
		log.Fatal(err.Error())
	}

	opts := wrap.Options()
	opts.Logger = log.New(log.Writer(), "", log.Flags())
	sess, err := dfngen.NewSession(fams, opts, wrap.Acceptor(), assigner, rng)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Session %s, %s seed %d.", sess.ID, rng.Type(), rng.Seed())

	users, force, err := wrap.UserFractures()
	if err != nil {
		log.Fatal(err.Error())
	}
	for i, p := range users {
		if force[i] {
			err = sess.InsertForced(p)
		} else {
			_, err = sess.InsertChecked(p)
		}
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = sess.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("Interrupted, writing the fractures accepted so far.")
	} else if err != nil {
		log.Fatal(err.Error())
	}

	if con.ValidIntersectionFile() {
		records, err := io.ReadIntersections(con.IntersectionFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		for _, r := range records {
			if err := sess.Link(r.A, r.B); err != nil {
				log.Fatal(err.Error())
			}
		}
	}

	net, err := sess.Finalize(wrap.FinalizeOptions())
	if err != nil {
		log.Fatal(err.Error())
	}

	log.Printf(
		"Writing %d fractures in %d groups (P32 = %.4g) to %s.",
		net.Report.Final.Count, net.Report.Groups, net.Report.Final.P32, con.Output,
	)
	if err := io.WriteNetwork(con.Output, net); err != nil {
		log.Fatal(err.Error())
	}
}
