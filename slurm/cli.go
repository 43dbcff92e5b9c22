package slurm

import (
	"errors"
	"io"

	flag "github.com/juju/gnuflag"
)

// Option descriptions
const (
	sBatchAccountDesc       = `Charge resources used by this job to specified account.`
	sBatchConstraintDesc    = `Nodes can have features assigned to them by the Slurm administrator.`
	sBatchCpusPerTaskDesc   = `Advise the Slurm controller that ensuing job steps will require ncpus number of processors per task.`
	sBatchErrorDesc         = `Connect the batch script's standard error directly to the file name specified.`
	sBatchExclusiveDesc     = `The job allocation can not share nodes with other running jobs.`
	sBatchGpusDesc          = `Specify the total number of GPUs required for the job. An optional GPU type specification can be supplied.`
	sBatchGresDesc          = `Specifies a comma delimited list of generic consumable resources. The format of each entry on the list is "name[[:type]:count]".`
	sBatchJobNameDesc       = `Specify a name for the job allocation.`
	sBatchMailTypeDesc      = `Notify user by email when certain event types occur.`
	sBatchMailUserDesc      = `User to receive email notification of state changes as defined by --mail-type.`
	sBatchMemDesc           = `Specify the real memory required per node. Default units are megabytes. Different units can be specified using the suffix [K|M|G|T].`
	sBatchNodelistDesc      = `Request a specific list of hosts.`
	sBatchNodesDesc         = `Request that a minimum of minnodes nodes be allocated to this job.`
	sBatchNtasksDesc        = `Advise the Slurm controller that job steps run within the allocation will launch a maximum of number tasks.`
	sBatchNtasksPerNodeDesc = `Request that ntasks be invoked on each node.`
	sBatchOutputDesc        = `Instruct Slurm to connect the batch script's standard output directly to the file name specified.`
	sBatchPartitionDesc     = `Request a specific partition for the resource allocation.`
	sBatchTimeDesc          = `Set a limit on the total run time of the job allocation.`
)

// List of support Slurm options
// map[string]struct{} enables querying supported options using:
// _, ok := sBatchSupportedArgs()["<option>"]
func sBatchSupportedArgs() map[string]struct{} {
	return map[string]struct{}{
		"account":         struct{}{},
		"cpus-per-task":   struct{}{},
		"gpus":            struct{}{},
		"gres":            struct{}{},
		"job-name":        struct{}{},
		"mem":             struct{}{},
		"nodelist":        struct{}{},
		"nodes":           struct{}{},
		"ntasks-per-node": struct{}{},
		"partition":       struct{}{},
	}
}

// Slurm uses Short and Long command line options
// Save both with golang flag
type gnuFlag struct {
	Short string
	Long  string
	Value interface{}
}

// Use map to set command line options. map key is the same as Long option
type gnuFlags map[string]gnuFlag

// Check if either Long or Short flag is used
func lookupGnuArg(name string, spec gnuFlags) (string, error) {
	for k, v := range spec {
		// map key is the same as Long option
		if name == k || name == v.Short {
			return k, nil
		}
	}
	return "", errors.New("sbatch: unable to parse arguments")
}

// parseSBatchArgs parses one #SBATCH directive line. Options sbatch knows
// but jobs cannot carry over still parse, so callers can warn about them.
func parseSBatchArgs(args []string) (gnuFlags, *flag.FlagSet, error) {

	flags := flag.NewFlagSet(SBatchName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}

	options := make(gnuFlags)
	chargeAccount := setFlagString(flags, "A", "account", "", sBatchAccountDesc)
	options["account"] = gnuFlag{
		Short: "A",
		Long:  "account",
		Value: chargeAccount,
	}
	constraint := setFlagString(flags, "C", "constraint", "", sBatchConstraintDesc)
	options["constraint"] = gnuFlag{
		Short: "C",
		Long:  "constraint",
		Value: constraint,
	}
	cpusPerTask := setFlagInt(flags, "c", "cpus-per-task", 1, sBatchCpusPerTaskDesc)
	options["cpus-per-task"] = gnuFlag{
		Short: "c",
		Long:  "cpus-per-task",
		Value: cpusPerTask,
	}
	stdErr := setFlagString(flags, "e", "error", "", sBatchErrorDesc)
	options["error"] = gnuFlag{
		Short: "e",
		Long:  "error",
		Value: stdErr,
	}
	exclusive := flags.Bool("exclusive", false, sBatchExclusiveDesc)
	options["exclusive"] = gnuFlag{
		Long:  "exclusive",
		Value: exclusive,
	}
	gpus := setFlagString(flags, "G", "gpus", "", sBatchGpusDesc)
	options["gpus"] = gnuFlag{
		Short: "G",
		Long:  "gpus",
		Value: gpus,
	}
	genericResources := flags.String("gres", "", sBatchGresDesc)
	options["gres"] = gnuFlag{
		Long:  "gres",
		Value: genericResources,
	}
	jobName := setFlagString(flags, "J", "job-name", "", sBatchJobNameDesc)
	options["job-name"] = gnuFlag{
		Short: "J",
		Long:  "job-name",
		Value: jobName,
	}
	mailType := flags.String("mail-type", "", sBatchMailTypeDesc)
	options["mail-type"] = gnuFlag{
		Long:  "mail-type",
		Value: mailType,
	}
	mailUser := flags.String("mail-user", "", sBatchMailUserDesc)
	options["mail-user"] = gnuFlag{
		Long:  "mail-user",
		Value: mailUser,
	}
	memory := flags.String("mem", "", sBatchMemDesc)
	options["mem"] = gnuFlag{
		Long:  "mem",
		Value: memory,
	}
	nodeCount := setFlagInt(flags, "N", "nodes", 1, sBatchNodesDesc)
	options["nodes"] = gnuFlag{
		Short: "N",
		Long:  "nodes",
		Value: nodeCount,
	}
	nodelist := setFlagString(flags, "w", "nodelist", "", sBatchNodelistDesc)
	options["nodelist"] = gnuFlag{
		Short: "w",
		Long:  "nodelist",
		Value: nodelist,
	}
	cpuCount := setFlagInt(flags, "n", "ntasks", 1, sBatchNtasksDesc)
	options["ntasks"] = gnuFlag{
		Short: "n",
		Long:  "ntasks",
		Value: cpuCount,
	}
	tasksPerNode := flags.Int("ntasks-per-node", 1, sBatchNtasksPerNodeDesc)
	options["ntasks-per-node"] = gnuFlag{
		Long:  "ntasks-per-node",
		Value: tasksPerNode,
	}
	stdOut := setFlagString(flags, "o", "output", "", sBatchOutputDesc)
	options["output"] = gnuFlag{
		Short: "o",
		Long:  "output",
		Value: stdOut,
	}
	partition := setFlagString(flags, "p", "partition", "", sBatchPartitionDesc)
	options["partition"] = gnuFlag{
		Short: "p",
		Long:  "partition",
		Value: partition,
	}
	timeLimit := setFlagString(flags, "t", "time", "", sBatchTimeDesc)
	options["time"] = gnuFlag{
		Short: "t",
		Long:  "time",
		Value: timeLimit,
	}

	if flags.Parse(false, args) != nil {
		return nil, &flag.FlagSet{}, errors.New("sbatch: cannot process flags")
	}

	return options, flags, nil
}

// Slurm support Short and Long command line options
// Register both with the same Golang flag
func setFlagString(flags *flag.FlagSet, short, long, value, usage string) *string {
	flagVar := flags.String(short, value, usage)
	flags.StringVar(flagVar, long, value, usage)
	return flagVar
}

func setFlagInt(flags *flag.FlagSet, short, long string, value int, usage string) *int {
	flagVar := flags.Int(short, value, usage)
	flags.IntVar(flagVar, long, value, usage)
	return flagVar
}
