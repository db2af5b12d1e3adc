package common

import "os"

const serviceName = "bugtrack"

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	hostname, err := os.Hostname()
	if err != nil {
		return serviceName
	}
	return hostname
}
