package commands

import (
	"context"
	"fmt"
)

// LogoutCmd erases the stored session.
type LogoutCmd struct {
	clientFlags
}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(l.clientFlags)
	if err != nil {
		return err
	}

	if err := env.sess.Logout(); err != nil {
		return err
	}

	fmt.Println("Signed out.")
	return nil
}
