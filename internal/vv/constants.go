//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vv

const (
	MYNAME    = "NarrativeScope"
	SHORTNAME = "NSC"
	VERSION   = "0.3.2"

	BLACKANDWHITE     = false
	CONFIGLOCATION    = "."
	CONFIGALTAPTH     = "%s/.config/" // %s = os.UserHomeDir()
	CONFIGBASIC       = "nsc-conf.yaml"
	DEFAULTDELIMITER  = ","
	DEFAULTGOLOGLEVEL = 2
	DEFAULTOUTPUTDIR  = "nsc-output"
	DEFAULTTEXTFIELD  = "text"
	JSONINDENT        = "  "
	WRITEPERMS        = 0644
	DIRPERMS          = 0755

	// tokens

	DEFAULTSTOPLIST  = "smart"
	DEFAULTALPHALO   = 0x0001
	DEFAULTALPHAHI   = 0x007F
	DEFAULTPADDING   = true
	DEFAULTSTEMMER   = "english"
	DEFAULTMINCOUNT  = 2
	DEFAULTFREQTOP   = 25
	DEFAULTKWICWIND  = 5
	DEFAULTKEYMEAS   = "chi2"
	DEFAULTKEYTOP    = 20
	DEFAULTSIMMETRIC = "cosine"
	DEFAULTSIMTOP    = 10

	// topics

	LDAKMIN          = 3
	LDAKMAX          = 10
	LDAITER          = 50
	LDAXFORMPASSES   = 25
	LDABURNINPASSES  = 1
	LDACHGEVALFRQ    = 10
	LDAPERPEVALFRQ   = 10
	LDAPERPTOL       = 1e-2
	LDAMEANCHGTOL    = 1e-5
	LDAALPHA         = 0.1
	LDAETA           = 0.01
	LDABATCHSIZE     = 100
	LDASEED          = 8675309
	TOPICTOPWORDS    = 15
	TOPICCOHERENCEM  = 10
	TOPICFREXW       = 0.5
	TOPICEXCLW       = 0.7
	TOPICCORRCUTOFF  = 0.01
	TOPICEFFECTLEVEL = 0.95
	TOPICTHOUGHTS    = 3

	// charts

	DEFAULTCHRTWIDTH  = "1200px"
	DEFAULTCHRTHEIGHT = "800px"

	// messaging thresholds

	MSGMAND = -1
	MSGCRIT = 0
	MSGWARN = 1
	MSGNOTE = 2
	MSGFYI  = 3
	MSGPEEK = 4
	MSGTMI  = 5

	TIMETRACKERMSGTHRESH = MSGFYI
)
