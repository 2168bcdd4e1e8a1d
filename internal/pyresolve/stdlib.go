package pyresolve

// stdlibModules is a curated set of top-level CPython standard library
// module names (CPython 3.11's sys.stdlib_module_names). Hand
// maintained; a name missing here is simply treated as a resolvable
// user module.
var stdlibModules = map[string]struct{}{
	"abc": {}, "aifc": {}, "argparse": {}, "array": {}, "ast": {},
	"asynchat": {}, "asyncio": {}, "asyncore": {}, "atexit": {}, "audioop": {},
	"base64": {}, "bdb": {}, "binascii": {}, "bisect": {}, "builtins": {},
	"bz2": {}, "calendar": {}, "cgi": {}, "cgitb": {}, "chunk": {},
	"cmath": {}, "cmd": {}, "code": {}, "codecs": {}, "codeop": {},
	"collections": {}, "colorsys": {}, "compileall": {}, "concurrent": {},
	"configparser": {}, "contextlib": {}, "contextvars": {}, "copy": {},
	"copyreg": {}, "cProfile": {}, "crypt": {}, "csv": {}, "ctypes": {},
	"dataclasses": {}, "datetime": {}, "dbm": {}, "decimal": {}, "difflib": {},
	"dis": {}, "distutils": {}, "doctest": {}, "email": {}, "encodings": {},
	"ensurepip": {}, "enum": {}, "errno": {}, "faulthandler": {}, "fcntl": {},
	"filecmp": {}, "fileinput": {}, "fnmatch": {}, "fractions": {}, "ftplib": {},
	"functools": {}, "gc": {}, "getopt": {}, "getpass": {}, "gettext": {},
	"glob": {}, "graphlib": {}, "grp": {}, "gzip": {}, "hashlib": {},
	"heapq": {}, "hmac": {}, "html": {}, "http": {}, "idlelib": {},
	"imaplib": {}, "imghdr": {}, "imp": {}, "importlib": {}, "inspect": {},
	"io": {}, "ipaddress": {}, "itertools": {}, "json": {}, "keyword": {},
	"lib2to3": {}, "linecache": {}, "locale": {}, "logging": {}, "lzma": {},
	"mailbox": {}, "mailcap": {}, "marshal": {}, "math": {}, "mimetypes": {},
	"mmap": {}, "modulefinder": {}, "msilib": {}, "msvcrt": {}, "multiprocessing": {},
	"netrc": {}, "nis": {}, "nntplib": {}, "numbers": {}, "operator": {},
	"optparse": {}, "os": {}, "ossaudiodev": {}, "pathlib": {}, "pdb": {},
	"pickle": {}, "pickletools": {}, "pipes": {}, "pkgutil": {}, "platform": {},
	"plistlib": {}, "poplib": {}, "posix": {}, "posixpath": {}, "pprint": {},
	"profile": {}, "pstats": {}, "pty": {}, "pwd": {}, "py_compile": {},
	"pyclbr": {}, "pydoc": {}, "queue": {}, "quopri": {}, "random": {},
	"re": {}, "readline": {}, "reprlib": {}, "resource": {}, "rlcompleter": {},
	"runpy": {}, "sched": {}, "secrets": {}, "select": {}, "selectors": {},
	"shelve": {}, "shlex": {}, "shutil": {}, "signal": {}, "site": {},
	"smtpd": {}, "smtplib": {}, "sndhdr": {}, "socket": {}, "socketserver": {},
	"spwd": {}, "sqlite3": {}, "ssl": {}, "stat": {}, "statistics": {},
	"string": {}, "stringprep": {}, "struct": {}, "subprocess": {}, "sunau": {},
	"symtable": {}, "sys": {}, "sysconfig": {}, "syslog": {}, "tabnanny": {},
	"tarfile": {}, "telnetlib": {}, "tempfile": {}, "termios": {}, "textwrap": {},
	"threading": {}, "time": {}, "timeit": {}, "tkinter": {}, "token": {},
	"tokenize": {}, "tomllib": {}, "trace": {}, "traceback": {}, "tracemalloc": {},
	"tty": {}, "turtle": {}, "turtledemo": {}, "types": {}, "typing": {},
	"unicodedata": {}, "unittest": {}, "urllib": {}, "uu": {}, "uuid": {},
	"venv": {}, "warnings": {}, "wave": {}, "weakref": {}, "webbrowser": {},
	"winreg": {}, "winsound": {}, "wsgiref": {}, "xdrlib": {}, "xml": {},
	"xmlrpc": {}, "zipapp": {}, "zipfile": {}, "zipimport": {}, "zlib": {},
	"zoneinfo": {}, "__future__": {},
}

// IsStdlib reports whether the top-level module name belongs to the
// standard library, in which case the semantic discoverer skips it
// without treating the skip as an error.
func IsStdlib(topLevelName string) bool {
	_, ok := stdlibModules[topLevelName]
	return ok
}
