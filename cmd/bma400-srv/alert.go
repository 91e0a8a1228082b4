// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mail "gopkg.in/gomail.v2"
)

const maxAlerts = 5

type counter interface {
	N() int
	Running() bool
}

// watchdog raises an alert when a running acquisition stops producing
// snapshots.
type watchdog struct {
	srv   counter
	freq  time.Duration
	msg   *log.Logger
	alert func(n int, freq time.Duration) error

	last   int
	alerts int
}

func newWatchdog(srv counter, freq time.Duration, msg *log.Logger, alert func(n int, freq time.Duration) error) *watchdog {
	return &watchdog{
		srv:   srv,
		freq:  freq,
		msg:   msg,
		alert: alert,
		last:  -1,
	}
}

func (wd *watchdog) run(ctx context.Context) {
	tick := time.NewTicker(wd.freq)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			wd.check()
		}
	}
}

// check compares the number of acquired snapshots with the previous check.
// Only running acquisitions are checked, and each run rearms the watchdog.
func (wd *watchdog) check() {
	if !wd.srv.Running() {
		wd.last = -1
		wd.alerts = 0
		return
	}

	n := wd.srv.N()
	switch {
	case n < wd.last:
		wd.alerts = 0
	case n == wd.last:
		wd.msg.Printf("no snapshot acquired in the last %v (n=%d)", wd.freq, n)
		wd.alerts++
		if wd.alerts <= maxAlerts {
			err := wd.alert(n, wd.freq)
			if err != nil {
				wd.msg.Printf("could not send alert: %+v", err)
			}
		}
	default:
		wd.alerts = 0
	}
	wd.last = n
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func mailAlert(msg *log.Logger) func(n int, freq time.Duration) error {
	return func(n int, freq time.Duration) error {
		if alertMailUsr == "" || alertMailPwd == "" ||
			alertMailSrv == "" || alertMailPort == 0 ||
			len(alertMailTgts) == 0 || alertMailTgts[0] == "" {
			return fmt.Errorf("missing mail credentials")
		}

		host, _ := os.Hostname()

		m := mail.NewMessage()
		m.SetHeader("From", alertMailUsr)
		m.SetHeader("Bcc", alertMailTgts...)
		m.SetHeader("Subject", fmt.Sprintf("[bma400-srv] acquisition stalled on %q", host))
		m.SetBody("text/plain", fmt.Sprintf("host: %q\nsnapshots: %d\nfreq: %v",
			host, n, freq,
		))

		dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
		dial.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
		err := dial.DialAndSend(m)
		if err != nil {
			return fmt.Errorf("could not send mail alert: %w", err)
		}
		msg.Printf("mail alert sent to %v", alertMailTgts)
		return nil
	}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return v
}
