/*
Package shell is a small line-oriented interpreter for exercising a [channel.Channel] by hand or from a script.

Each line is one command, split like a POSIX shell would split it. Flags come before positional arguments.

	sub --reply pong ping
	request ping hello
	defer late
	await --timeout 5s D1

Output goes to a [Printer], which writes to STDERR unless told otherwise.
Listener calls, results, and teardown hooks are printed as they happen, so a script reads as a transcript of the channel's behavior.
*/
package shell
