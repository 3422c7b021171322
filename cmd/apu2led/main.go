// SPDX-FileCopyrightText: 2023 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

// apu2led serves the APU2 front panel LEDs over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hubertat/servicemaker"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/warthog618/go-apu2led"
)

var (
	Version string

	addr        = flag.String("addr", "localhost:8266", "HTTP listen address")
	devmem      = flag.String("devmem", apu2led.DefaultDevMemPath, "path of the physical memory device")
	sim         = flag.Bool("sim", false, "drive a simulated register bank rather than the hardware")
	chip        = flag.String("chip", "", "drive the LEDs through this gpiochip rather than mapping the registers")
	lines       = flag.String("lines", "68,69,70", "gpiochip line offsets for the LEDs, with -chip")
	debug       = flag.Bool("debug", false, "enable debug logging")
	flagInstall = flag.Bool("install", false, "install service in os")

	service = servicemaker.ServiceMaker{
		User:               "root",
		UserGroups:         []string{},
		ServicePath:        "/etc/systemd/system/apu2led.service",
		ServiceDescription: "apu2led service: PC Engines APU2 front panel LED controller. github.com/warthog618/go-apu2led",
		ExecDir:            "/srv/apu2led",
		ExecName:           "apu2led",
	}
)

func main() {
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("apu2led started", zap.String("version", Version))

	if *flagInstall {
		if err := service.InstallService(); err != nil {
			logger.Fatal("failed to install service", zap.Error(err))
		}
		logger.Info("service installed")
		return
	}

	reg := apu2led.NewRegistry(apu2led.WithLogger(logger.Named("registry")))
	plat := apu2led.NewPlatform(apu2led.WithLogger(logger.Named("platform")))

	var stop func()
	if len(*chip) > 0 {
		stop, err = startLines(reg, *chip, *lines)
	} else {
		stop, err = startDriver(reg, plat, logger)
	}
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer stop()

	srv := &http.Server{Addr: *addr, Handler: apu2led.NewHandler(reg)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()
	logger.Info("serving", zap.String("addr", *addr))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	for sig := range c {
		switch sig {
		case syscall.SIGUSR1:
			if err := plat.Suspend(); err != nil {
				logger.Warn("suspend failed", zap.Error(err))
			}
		case syscall.SIGUSR2:
			if err := plat.Resume(); err != nil {
				logger.Warn("resume failed", zap.Error(err))
			}
		default:
			signal.Stop(c)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			srv.Shutdown(ctx)
			cancel()
			return
		}
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// startDriver starts a Driver mapping either the hardware or a simulated bank.
func startDriver(reg *apu2led.Registry, plat *apu2led.Platform, logger *zap.Logger) (func(), error) {
	var m apu2led.Mapper = apu2led.NewSim()
	closer := func() error { return nil }
	if !*sim {
		dm, err := apu2led.OpenDevMem(*devmem)
		if err != nil {
			return nil, err
		}
		m, closer = dm, dm.Close
	}
	bank := apu2led.NewBank(m, apu2led.WithLogger(logger.Named("bank")))
	d := apu2led.NewDriver(bank, reg, plat, apu2led.WithLogger(logger))
	if err := d.Start(); err != nil {
		closer()
		return nil, err
	}
	return func() {
		if err := d.Stop(); err != nil {
			logger.Warn("stop incomplete", zap.Error(err))
		}
		closer()
	}, nil
}

// startLines registers an output for each line offset on the chip.
func startLines(reg *apu2led.Registry, chip, offsets string) (func(), error) {
	var outs []*apu2led.LineOutput
	var regs []apu2led.Registration
	stop := func() {
		for _, r := range regs {
			r.Unregister()
		}
		for _, o := range outs {
			o.Close()
		}
	}
	fields := strings.Split(offsets, ",")
	if len(fields) > len(apu2led.Outputs) {
		return nil, errors.Errorf("too many lines: %d", len(fields))
	}
	for i, f := range fields {
		offset, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			stop()
			return nil, errors.Wrapf(err, "invalid line offset '%s'", f)
		}
		name := apu2led.Outputs[i].Name
		o, err := apu2led.RequestLineOutput(chip, offset, name)
		if err != nil {
			stop()
			return nil, err
		}
		outs = append(outs, o)
		r, err := reg.Register(name, o)
		if err != nil {
			stop()
			return nil, err
		}
		regs = append(regs, r)
	}
	return stop, nil
}
