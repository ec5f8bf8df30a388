//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	TERMINALTEXT = `Copyright (C) %s / %s
      %s

      This program comes with ABSOLUTELY NO WARRANTY; without even the
      implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.

      This is free software, and you are welcome to redistribute it and/or
      modify it under the terms of the GNU General Public License version 3.`

	PROJYEAR = "2024"
	PROJAUTH = "E. Gunderson"
	PROJURL  = "https://github.com/e-gun/NarrativeScope"

	HELPTEXTTEMPLATE = `S3command line optionsS0:
   C1-bwC0          disable color output in the console
   C1-cC0 C2{file}C0    read the configuration from this YAML file [C6currentC0: C3{{.conffile}}C0]
   C1-glC0 C2{num}C0    set log level (C1-1-5C0) [C6currentC0: C3{{.loglevel}}C0]
   C1-hC0           print this help information
   C1-iC0 C2{file}C0    the delimited input file [C6currentC0: C3{{.input}}C0]
   C1-jsC0          emit log messages as JSON (via zap) instead of colored text
   C1-kC0 C2{num}C0     fit this number of topics after the search [C6currentC0: C3{{.k}}C0]
   C1-krC0 C2{a-b}C0    candidate range for the topic-count search [C6currentC0: C3{{.kmin}}-{{.kmax}}C0]
   C1-mcC0 C2{num}C0    minimum corpus-wide count for a feature to survive trimming [C6currentC0: C3{{.mincount}}C0]
   C1-oC0 C2{dir}C0     write charts and snapshots here [C6currentC0: C3{{.outdir}}C0]
   C1-pcC0          enable CPU profiling run
   C1-pmC0          enable MEM profiling run
   C1-sdC0 C2{num}C0    random seed for topic inference [C6currentC0: C3{{.seed}}C0]
   C1-tfC0 C2{name}C0   name of the column holding the narrative text [C6currentC0: C3{{.textfield}}C0]
   C1-vC0           print version info and exit
   C1-wcC0 C2{num}C0    number of concurrent topic fits during the search [C1cpu_countC0 is C3{{.cpus}}C0][C6currentC0: C3{{.workers}}C0]

   configuration file search order: C3{{.conffile}}C0, then C3{{.home}}{{.basic}}C0
`
)
